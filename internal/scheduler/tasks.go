// Package scheduler provides background task queueing over Redis via asynq.
package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskClaimNotification = "commissions.claim.notification"

// ClaimNotificationPayload carries everything the worker needs to email the
// owning agent about a claim outcome without re-reading the commission row.
type ClaimNotificationPayload struct {
	CommissionID string `json:"commissionId"`
	AgentEmail   string `json:"agentEmail"`
	AgentName    string `json:"agentName"`
	StudentName  string `json:"studentName"`
	SchoolName   string `json:"schoolName"`
	DealName     string `json:"dealName,omitempty"`
	Success      bool   `json:"success"`
	Reason       string `json:"reason,omitempty"`
}

func NewClaimNotificationTask(payload ClaimNotificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskClaimNotification, data), nil
}

func ParseClaimNotificationPayload(task *asynq.Task) (ClaimNotificationPayload, error) {
	var payload ClaimNotificationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ClaimNotificationPayload{}, err
	}
	return payload, nil
}
