package domain

import (
	"fmt"
	"time"
)

type ResourceType string

const (
	ResourceTypePhysical ResourceType = "PHYSICAL_COPY"
	ResourceTypeDigital  ResourceType = "DIGITAL_COPY"
	ResourceTypeAudio    ResourceType = "AUDIO_COPY"
)

// Valid reports whether t is a known resource type.
func (t ResourceType) Valid() bool {
	switch t {
	case ResourceTypePhysical, ResourceTypeDigital, ResourceTypeAudio:
		return true
	}
	return false
}

type ResourceCondition string

const (
	ConditionExcellent ResourceCondition = "EXCELLENT"
	ConditionGood      ResourceCondition = "GOOD"
	ConditionFair      ResourceCondition = "FAIR"
	ConditionDamaged   ResourceCondition = "DAMAGED"
)

// Valid reports whether c is a known condition.
func (c ResourceCondition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionDamaged:
		return true
	}
	return false
}

type Resource struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Author        string            `json:"author"`
	Category      string            `json:"category"`
	Type          ResourceType      `json:"type"`
	Available     bool              `json:"available"`
	Condition     ResourceCondition `json:"condition"`
	TimesLoaned   int               `json:"times_loaned"`
	LastLoanedOn  *time.Time        `json:"last_loaned_on,omitempty"`
	Downloads     int               `json:"downloads"`
	DownloadLimit int               `json:"download_limit"`
	Queue         *ReservationQueue `json:"-"` // physical copies only
}

// NewResource returns an available resource of the given type in good
// condition. Physical copies get an empty reservation queue.
func NewResource(id, title, author string, typ ResourceType) *Resource {
	r := &Resource{
		ID:        id,
		Title:     title,
		Author:    author,
		Type:      typ,
		Available: true,
		Condition: ConditionGood,
	}
	switch typ {
	case ResourceTypePhysical:
		r.Queue = NewReservationQueue()
	case ResourceTypeDigital:
		r.DownloadLimit = DefaultDownloadLimit
	}
	return r
}

// IsPhysical reports whether r is a physical copy.
func (r *Resource) IsPhysical() bool {
	return r.Type == ResourceTypePhysical
}

// IsAvailable reports whether r can be borrowed right now. Digital and
// audio copies are always available, subject to the e-book download limit.
func (r *Resource) IsAvailable() bool {
	return r.lendable() == nil
}

// QueueLen is the number of entries in the reservation queue, counting
// entries that have expired but not yet been purged.
func (r *Resource) QueueLen() int {
	if r.Queue == nil {
		return 0
	}
	return r.Queue.Len()
}

func (r *Resource) downloadLimit() int {
	if r.DownloadLimit <= 0 {
		return DefaultDownloadLimit
	}
	return r.DownloadLimit
}

func (r *Resource) lendable() error {
	switch r.Type {
	case ResourceTypePhysical:
		if !r.Available {
			return fmt.Errorf("%w: %q is checked out", ErrResourceUnavailable, r.ID)
		}
		if r.Condition == ConditionDamaged {
			return fmt.Errorf("%w: %q is damaged", ErrResourceUnavailable, r.ID)
		}
	case ResourceTypeDigital:
		if r.Downloads >= r.downloadLimit() {
			return fmt.Errorf("%w: %q reached its download limit", ErrResourceUnavailable, r.ID)
		}
	}
	return nil
}

func (r *Resource) checkOut(now time.Time) error {
	if err := r.lendable(); err != nil {
		return err
	}
	switch r.Type {
	case ResourceTypePhysical:
		r.Available = false
	case ResourceTypeDigital:
		r.Downloads++
	}
	r.TimesLoaned++
	loanedOn := now
	r.LastLoanedOn = &loanedOn
	return nil
}

func (r *Resource) checkIn() {
	if r.IsPhysical() {
		r.Available = true
	}
}

// Reserve places userID in the reservation queue. Only physical copies
// that are currently checked out accept reservations.
func (r *Resource) Reserve(userID string, priority int, now time.Time) (string, error) {
	if !PolicyForResource(r).Reservable {
		return "", ErrNotReservable
	}
	if r.Available {
		return "", ErrResourceAvailable
	}
	if r.Queue == nil {
		r.Queue = NewReservationQueue()
	}
	return r.Queue.Enqueue(userID, priority, now)
}

// NextInQueue pops the highest-ranked live queue entry.
func (r *Resource) NextInQueue(now time.Time) (string, bool) {
	if r.Queue == nil {
		return "", false
	}
	return r.Queue.DequeueHead(now)
}
