// internal/domain/schedule/row.go
package schedule

import "time"

// Channel is one of the four payment rails under study.
type Channel string

const (
	ChannelBank    Channel = "Bank"
	ChannelMTS     Channel = "MTS" // Money Transfer Service
	ChannelFintech Channel = "Fintech"
	ChannelCrypto  Channel = "Crypto"
)

// Channels lists every channel in canonical order.
var Channels = []Channel{ChannelBank, ChannelMTS, ChannelFintech, ChannelCrypto}

// Amount is the transaction value in study currency units.
type Amount int

const (
	AmountLow  Amount = 100
	AmountHigh Amount = 250
)

// Amounts lists both amount levels in ascending order.
var Amounts = []Amount{AmountLow, AmountHigh}

// DeliveryMethod says how a confederate completes a transaction.
type DeliveryMethod string

const (
	DeliveryInPerson DeliveryMethod = "In-person"
	DeliveryOnline   DeliveryMethod = "Online"
)

// Study layout constants.
const (
	TransactionsPerConfederate = 40
	BlockSize                  = 10
	Blocks                     = TransactionsPerConfederate / BlockSize
	Weeks                      = 12
	WeeksPerPhase              = 4
	Phases                     = Weeks / WeeksPerPhase
	TransactionsPerChannel     = TransactionsPerConfederate / 4
	MaxChannelRun              = 2
	InPersonPerChannel         = 2
)

// Confederate is a trained participant who executes a schedule.
type Confederate struct {
	ID      string `yaml:"id"`
	Country string `yaml:"country"`
}

// Row is a single scheduled transaction.
type Row struct {
	ConfederateID    string
	Country          string
	TransactionOrder int // 1..40
	Block            int // 1..4
	Phase            int // 1..3
	AssignedWeek     int // 1..12
	Date             time.Time
	Channel          Channel
	Amount           Amount
	DeliveryMethod   DeliveryMethod
}

// BlockOf returns the 1-based block for a 1-based transaction order.
func BlockOf(order int) int {
	return (order-1)/BlockSize + 1
}

// PhaseOf returns the 1-based phase for a 1-based week.
func PhaseOf(week int) int {
	return (week-1)/WeeksPerPhase + 1
}
