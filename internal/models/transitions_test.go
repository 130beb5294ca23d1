package models

import "testing"

func TestRequestTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{RequestStatusPending, RequestStatusApproved, true},
		{RequestStatusPending, RequestStatusCancelled, true},
		{RequestStatusApproved, RequestStatusProcessing, true},
		{RequestStatusApproved, RequestStatusCancelled, true},
		{RequestStatusProcessing, RequestStatusAwaitingPickup, true},
		{RequestStatusProcessing, RequestStatusCancelled, false},
		{RequestStatusAwaitingPickup, RequestStatusOutForDelivery, true},
		{RequestStatusOutForDelivery, RequestStatusDeliveryConfirmed, true},
		{RequestStatusOutForDelivery, RequestStatusReceivedConfirmed, true},
		{RequestStatusDeliveryConfirmed, RequestStatusReceivedConfirmed, true},
		{RequestStatusReceivedConfirmed, RequestStatusCompleted, true},
		{RequestStatusPending, RequestStatusProcessing, false},
		{RequestStatusCompleted, RequestStatusPending, false},
		{RequestStatusRejected, RequestStatusApproved, false},
		{RequestStatusOutForDelivery, RequestStatusRejected, false},
	}
	for _, tt := range tests {
		if got := RequestCanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("RequestCanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRequestTerminalStatuses(t *testing.T) {
	for _, s := range []string{RequestStatusCompleted, RequestStatusRejected, RequestStatusCancelled} {
		if !RequestStatusTerminal(s) {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []string{RequestStatusPending, RequestStatusOutForDelivery, RequestStatusReceivedConfirmed} {
		if RequestStatusTerminal(s) {
			t.Errorf("expected %s not to be terminal", s)
		}
	}
}

func TestFurnitureTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{FurnitureStatusPendingDesigner, FurnitureStatusApprovedDesigner, true},
		{FurnitureStatusPendingDesigner, FurnitureStatusRejected, true},
		{FurnitureStatusApprovedDesigner, FurnitureStatusApprovedStorage, true},
		{FurnitureStatusApprovedDesigner, FurnitureStatusRejected, true},
		{FurnitureStatusApprovedStorage, FurnitureStatusRejected, false},
		{FurnitureStatusApprovedStorage, FurnitureStatusInTransit, true},
		{FurnitureStatusSeparated, FurnitureStatusAwaitingDelivery, true},
		{FurnitureStatusAwaitingDelivery, FurnitureStatusInTransit, true},
		{FurnitureStatusInTransit, FurnitureStatusPendingConfirmation, true},
		{FurnitureStatusPendingConfirmation, FurnitureStatusCompleted, true},
		{FurnitureStatusPendingDesigner, FurnitureStatusApprovedStorage, false},
		{FurnitureStatusCompleted, FurnitureStatusInTransit, false},
	}
	for _, tt := range tests {
		if got := FurnitureCanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("FurnitureCanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestFurniturePreTransit(t *testing.T) {
	for _, s := range []string{FurnitureStatusApprovedStorage, FurnitureStatusSeparated, FurnitureStatusAwaitingDelivery} {
		if !FurniturePreTransit(s) {
			t.Errorf("expected %s to be pre-transit", s)
		}
	}
	for _, s := range []string{FurnitureStatusPendingDesigner, FurnitureStatusInTransit, FurnitureStatusCompleted} {
		if FurniturePreTransit(s) {
			t.Errorf("expected %s not to be pre-transit", s)
		}
	}
}

func TestRemovalTransitions(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{RemovalStatusPending, RemovalStatusApprovedStorage, true},
		{RemovalStatusPending, RemovalStatusApprovedDisposal, true},
		{RemovalStatusPending, RemovalStatusRejected, true},
		{RemovalStatusApprovedStorage, RemovalStatusAwaitingPickup, true},
		{RemovalStatusApprovedDisposal, RemovalStatusAwaitingPickup, true},
		{RemovalStatusApprovedStorage, RemovalStatusRejected, false},
		{RemovalStatusAwaitingPickup, RemovalStatusInTransit, true},
		{RemovalStatusInTransit, RemovalStatusCompleted, true},
		{RemovalStatusCompleted, RemovalStatusPending, false},
	}
	for _, tt := range tests {
		if got := RemovalCanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("RemovalCanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestBatchTransitionsAndMembers(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{BatchStatusPending, BatchStatusInTransit, true},
		{BatchStatusPending, BatchStatusCancelled, true},
		{BatchStatusInTransit, BatchStatusDeliveryConfirmed, true},
		{BatchStatusInTransit, BatchStatusPendingConfirmation, true},
		{BatchStatusInTransit, BatchStatusCancelled, false},
		{BatchStatusDeliveryConfirmed, BatchStatusReceivedConfirmed, true},
		{BatchStatusPendingConfirmation, BatchStatusConfirmedByRequester, true},
		{BatchStatusReceivedConfirmed, BatchStatusCompleted, true},
		{BatchStatusConfirmedByRequester, BatchStatusCompleted, true},
		{BatchStatusCompleted, BatchStatusPending, false},
	}
	for _, tt := range tests {
		if got := BatchCanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("BatchCanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}

	if !BatchStatusTerminal(BatchStatusCancelled) || !BatchStatusTerminal(BatchStatusCompleted) {
		t.Error("expected CANCELLED and COMPLETED to be terminal")
	}
	if BatchStatusTerminal(BatchStatusPendingConfirmation) {
		t.Error("PENDING_CONFIRMATION must not be terminal")
	}

	b := DeliveryBatch{RequestIDs: []string{"REQ-1", "REQ-2"}, FurnitureRequestIDs: []string{"FREQ-1"}}
	members := b.Members()
	if len(members) != 3 || members[0] != "REQ-1" || members[2] != "FREQ-1" {
		t.Errorf("unexpected members: %v", members)
	}
}
