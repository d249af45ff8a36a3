package repository

import (
	"strings"
	"testing"
)

func TestGetByOwnerQueryIsSellerScoped(t *testing.T) {
	query := strings.ToLower(getByOwnerQuery)

	if !strings.Contains(query, "where id = $1 and seller_id = $2") {
		t.Fatal("visit lookup must be scoped to the owning seller")
	}
}

func TestListBySellerQueryIsSellerScoped(t *testing.T) {
	query := strings.ToLower(listBySellerQuery)

	requiredFragments := []string{
		"where v.seller_id = $1",
		"left join scheduled_visit_clients c on c.visit_id = v.id",
		"count(c.id)",
		"order by v.visit_date",
	}

	for _, fragment := range requiredFragments {
		if !strings.Contains(query, fragment) {
			t.Fatalf("expected list query fragment %q to be present", fragment)
		}
	}
}

func TestMembershipQueryIsVisitScoped(t *testing.T) {
	query := strings.ToLower(getClientMembershipQuery)

	if !strings.Contains(query, "where visit_id = $1 and client_id = $2") {
		t.Fatal("membership lookup must be scoped to the visit")
	}
}
