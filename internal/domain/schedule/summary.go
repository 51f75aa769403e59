package schedule

// Counts tallies rows by channel, amount and delivery method.
type Counts struct {
	ByChannel  map[Channel]int
	ByAmount   map[Amount]int
	ByDelivery map[DeliveryMethod]int
	Total      int
}

// NewCounts returns zeroed counts with every known key present.
func NewCounts() Counts {
	c := Counts{
		ByChannel:  make(map[Channel]int, len(Channels)),
		ByAmount:   make(map[Amount]int, len(Amounts)),
		ByDelivery: make(map[DeliveryMethod]int, 2),
	}
	for _, ch := range Channels {
		c.ByChannel[ch] = 0
	}
	for _, a := range Amounts {
		c.ByAmount[a] = 0
	}
	c.ByDelivery[DeliveryInPerson] = 0
	c.ByDelivery[DeliveryOnline] = 0
	return c
}

// Add counts a single row.
func (c *Counts) Add(r Row) {
	c.ByChannel[r.Channel]++
	c.ByAmount[r.Amount]++
	c.ByDelivery[r.DeliveryMethod]++
	c.Total++
}

// Schedule is one confederate's full set of rows, in transaction order.
type Schedule struct {
	Confederate Confederate
	Rows        []Row
}

// Study holds every generated schedule plus the balance roll-ups.
type Study struct {
	Seed           int64
	Schedules      []Schedule
	PerConfederate map[string]Counts
	Overall        Counts
}

// Master concatenates every schedule's rows in confederate order.
func (s *Study) Master() []Row {
	var rows []Row
	for _, sc := range s.Schedules {
		rows = append(rows, sc.Rows...)
	}
	return rows
}
