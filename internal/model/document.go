package model

import (
	"time"

	"github.com/google/uuid"
)

// BillLine is one row of the rendered bill, in minor currency units.
type BillLine struct {
	Label       string
	Quantity    int
	RateCents   int64
	AmountCents int64
}

// ContractDocument carries everything the PDF renderer needs.
type ContractDocument struct {
	Contract HuntContract
	Hunt     *Hunt
	Lines    []BillLine
}

type StatusGroup struct {
	Status    ContractStatus
	Contracts []HuntContract
}

// ContractsReport is the input for the outfitter contracts workbook.
type ContractsReport struct {
	OutfitterID    uuid.UUID
	GeneratedAt    time.Time
	TotalContracts int
	TotalCents     int64
	Groups         []StatusGroup
}
