package vehicle

// Subscriber receives the normalized view of each selected record.
type Subscriber func(View)

// Selection holds the current vehicle and notifies subscribers on change.
type Selection struct {
	current  *Vehicle
	view     View
	epoch    uint64
	nextID   int
	handlers []subscription
}

type subscription struct {
	id int
	fn Subscriber
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{}
}

// Select makes v current, advances the epoch and notifies every subscriber
// synchronously. Selecting the same record again still notifies.
func (s *Selection) Select(v Vehicle) {
	vc := v
	s.current = &vc
	s.view = v.Normalize()
	s.epoch++

	// Copy so a subscriber may unsubscribe while being notified.
	handlers := append([]subscription(nil), s.handlers...)
	for _, h := range handlers {
		h.fn(s.view)
	}
}

// Subscribe registers fn and returns a function removing it.
func (s *Selection) Subscribe(fn Subscriber) func() {
	s.nextID++
	id := s.nextID
	s.handlers = append(s.handlers, subscription{id: id, fn: fn})
	return func() {
		for i, h := range s.handlers {
			if h.id == id {
				s.handlers = append(s.handlers[:i], s.handlers[i+1:]...)
				return
			}
		}
	}
}

// Current returns the selected record as the provider supplied it.
func (s *Selection) Current() (Vehicle, bool) {
	if s.current == nil {
		return Vehicle{}, false
	}
	return *s.current, true
}

// View returns the normalized view of the selected record.
func (s *Selection) View() (View, bool) {
	if s.current == nil {
		return View{}, false
	}
	return s.view, true
}

// Epoch counts selections. It increases on every Select.
func (s *Selection) Epoch() uint64 {
	return s.epoch
}
