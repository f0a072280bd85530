package acompreq

import (
	"github.com/vsinha/acompreq/pkg/application/dto"
	"github.com/vsinha/acompreq/pkg/domain/entities"
)

// RawLine is one row of the requisition log as read from the spreadsheet
type RawLine = entities.RawRequisitionLine

// Assignment maps a construction site to its administrator
type Assignment = entities.AdministratorAssignment

// AddressBook maps administrator names to delivery addresses
type AddressBook = entities.AddressBook

// Aggregate is the per-requisition fulfillment summary
type Aggregate = entities.RequisitionAggregate

// Digest is the notification addressed to one administrator
type Digest = entities.Digest

// Result is the outcome of one tracking pass
type Result = dto.RunResult

const (
	Pending        = entities.Pending
	FullyFulfilled = entities.FullyFulfilled
)
