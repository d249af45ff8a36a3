package domain

import (
	"fmt"
	"time"

	"sales_visits_backend/platform/validator"
)

type dateKind int

const (
	dateAbsent dateKind = iota
	dateText
	dateCalendar
)

// DateField is the visit date as supplied by a caller: missing, still a
// string, or an actual calendar date. Only the last one is valid.
type DateField struct {
	kind  dateKind
	text  string
	value time.Time
}

func NoDate() DateField                  { return DateField{kind: dateAbsent} }
func TextDate(s string) DateField        { return DateField{kind: dateText, text: s} }
func CalendarDate(t time.Time) DateField { return DateField{kind: dateCalendar, value: CalendarDay(t)} }

// ClientEntry is one element of a draft client list: either a validated
// client reference or some other raw value.
type ClientEntry struct {
	client *VisitClient
	raw    interface{}
}

func ClientRef(c *VisitClient) ClientEntry { return ClientEntry{client: c} }
func RawEntry(v interface{}) ClientEntry   { return ClientEntry{raw: v} }

// ClientList is the draft client argument: missing, not a list, or a list.
type ClientList struct {
	present bool
	isList  bool
	items   []ClientEntry
}

func NoClients() ClientList                   { return ClientList{} }
func NotAList() ClientList                    { return ClientList{present: true} }
func Clients(items ...ClientEntry) ClientList { return ClientList{present: true, isList: true, items: items} }

// Draft is unvalidated visit input. Build turns it into a Visit.
type Draft struct {
	SellerID string
	Date     DateField
	Clients  ClientList
}

type check func(*Draft) error

// checks run in order; the first failure is reported.
var checks = []check{
	checkSeller,
	checkDate,
	checkClientList,
	checkClientEntries,
	checkDuplicateClients,
	checkEachClient,
}

// Validate reports the first structural defect of the draft.
func (d *Draft) Validate() error {
	for _, c := range checks {
		if err := c(d); err != nil {
			return err
		}
	}
	return nil
}

// Build validates the draft and materializes a Visit whose id comes from newID.
// Every client starts SCHEDULED.
func (d *Draft) Build(newID func() string) (*Visit, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	visit := &Visit{
		ID:       newID(),
		SellerID: d.SellerID,
		Date:     d.Date.value,
		Clients:  make([]VisitClient, 0, len(d.Clients.items)),
	}
	for _, entry := range d.Clients.items {
		client := *entry.client
		client.VisitID = visit.ID
		client.Status = StatusScheduled
		visit.Clients = append(visit.Clients, client)
	}
	return visit, nil
}

func checkSeller(d *Draft) error {
	if d.SellerID == "" {
		return newValidationError(ErrSellerIDRequired, "seller_id is required")
	}
	if !validator.IsCanonicalUUID(d.SellerID) {
		return newValidationError(ErrSellerIDMalformed, "seller_id must be a valid UUID")
	}
	return nil
}

func checkDate(d *Draft) error {
	switch d.Date.kind {
	case dateAbsent:
		return newValidationError(ErrDateRequired, "date is required")
	case dateText:
		return newValidationError(ErrDateIsText, "date must be a calendar date, not a string")
	}
	return nil
}

func checkClientList(d *Draft) error {
	switch {
	case !d.Clients.present:
		return newValidationError(ErrClientsRequired, "clients are required")
	case !d.Clients.isList:
		return newValidationError(ErrClientsNotList, "clients must be a list")
	case len(d.Clients.items) == 0:
		return newValidationError(ErrClientsEmpty, "clients must contain at least one client")
	}
	return nil
}

func checkClientEntries(d *Draft) error {
	for i, entry := range d.Clients.items {
		if entry.client == nil {
			return newValidationError(ErrClientNotRef, fmt.Sprintf("clients[%d] must be a visit client", i))
		}
	}
	return nil
}

func checkDuplicateClients(d *Draft) error {
	seen := make(map[string]struct{}, len(d.Clients.items))
	for _, entry := range d.Clients.items {
		id := entry.client.ClientID
		if _, dup := seen[id]; dup {
			return newValidationError(ErrDuplicateClient, "duplicate client_id in clients: "+id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func checkEachClient(d *Draft) error {
	for _, entry := range d.Clients.items {
		if err := entry.client.Validate(); err != nil {
			return err
		}
	}
	return nil
}
