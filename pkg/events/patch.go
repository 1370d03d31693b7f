package events

// Patch is a sparse set of field overrides recorded by the local overlay.
// Nil pointers mean "leave the field alone"; a patch only ever carries the
// fields the user actually changed.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Description *string  `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Organizer   *string  `json:"organized_by,omitempty"`
	Image       *string  `json:"image,omitempty"`
	Duration    *string  `json:"duration,omitempty"`
	Status      *string  `json:"status,omitempty"`
	Attendees   *int     `json:"attendees,omitempty"`
}

// IsZero reports whether the patch overrides no fields at all.
func (p Patch) IsZero() bool {
	return p == Patch{}
}

// Apply overlays the patch onto an event and returns the result.
// The input event is not modified.
func (p Patch) Apply(e Event) Event {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Location != nil {
		e.Location = *p.Location
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Price != nil {
		e.Price = *p.Price
	}
	if p.Organizer != nil {
		e.Organizer = *p.Organizer
	}
	if p.Image != nil {
		e.Image = *p.Image
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.Attendees != nil {
		e.Attendees = *p.Attendees
	}
	return e
}

// Merge combines two patches, last write wins per field: fields set in
// next override fields set in p, fields next leaves nil survive from p.
func (p Patch) Merge(next Patch) Patch {
	if next.Name != nil {
		p.Name = next.Name
	}
	if next.Date != nil {
		p.Date = next.Date
	}
	if next.Location != nil {
		p.Location = next.Location
	}
	if next.Description != nil {
		p.Description = next.Description
	}
	if next.Price != nil {
		p.Price = next.Price
	}
	if next.Organizer != nil {
		p.Organizer = next.Organizer
	}
	if next.Image != nil {
		p.Image = next.Image
	}
	if next.Duration != nil {
		p.Duration = next.Duration
	}
	if next.Status != nil {
		p.Status = next.Status
	}
	if next.Attendees != nil {
		p.Attendees = next.Attendees
	}
	return p
}

// DocumentFields flattens the patch's set fields into the remote document
// shape, for partial updates of remote-origin events.
func (p Patch) DocumentFields() map[string]any {
	fields := make(map[string]any)
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Date != nil {
		fields["date"] = *p.Date
	}
	if p.Location != nil {
		fields["location"] = *p.Location
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Price != nil {
		fields["price"] = *p.Price
	}
	if p.Organizer != nil {
		fields["organized_by"] = *p.Organizer
	}
	if p.Image != nil {
		fields["image"] = *p.Image
	}
	if p.Duration != nil {
		fields["duration"] = *p.Duration
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Attendees != nil {
		fields["attendees"] = *p.Attendees
	}
	return fields
}

// Helpers for building patches field by field.

// String returns a pointer to s, for populating patch fields.
func String(s string) *string { return &s }

// Float returns a pointer to f, for populating patch fields.
func Float(f float64) *float64 { return &f }

// Int returns a pointer to i, for populating patch fields.
func Int(i int) *int { return &i }
