package scheduler

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TaskOrphanObjectDelete removes an evidence object whose visit update failed
// after the upload had already succeeded.
const TaskOrphanObjectDelete = "visits.orphan_object.delete"

type OrphanObjectPayload struct {
	ObjectName string `json:"objectName"`
	VisitID    string `json:"visitId"`
	ClientID   string `json:"clientId"`
}

func NewOrphanObjectTask(payload OrphanObjectPayload) (*asynq.Task, error) {
	if payload.ObjectName == "" {
		return nil, fmt.Errorf("orphan object task: object name is required")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrphanObjectDelete, data), nil
}

func ParseOrphanObjectPayload(task *asynq.Task) (OrphanObjectPayload, error) {
	var payload OrphanObjectPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return OrphanObjectPayload{}, err
	}
	if payload.ObjectName == "" {
		return OrphanObjectPayload{}, fmt.Errorf("orphan object task: object name is required")
	}
	return payload, nil
}
