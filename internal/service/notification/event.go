package notification

import (
	"fmt"

	"github.com/google/uuid"
)

type Kind string

const (
	KindDocumentPublished       Kind = "document-published"
	KindRecommendationPublished Kind = "recommendation-published"
	KindNewsPublished           Kind = "news-published"
)

// Broadcast kinds go to every opted-in patient instead of one owner.
func (k Kind) Broadcast() bool { return k == KindNewsPublished }

func (k Kind) Valid() bool {
	switch k {
	case KindDocumentPublished, KindRecommendationPublished, KindNewsPublished:
		return true
	}
	return false
}

// Event is what publishers hand to dispatch. It travels as JSON over NATS.
type Event struct {
	Kind      Kind       `json:"kind"`
	SubjectID uuid.UUID  `json:"subject_id"`
	PatientID *uuid.UUID `json:"patient_id,omitempty"`
}

func (e Event) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if e.SubjectID == uuid.Nil {
		return fmt.Errorf("%w: subject id is empty", ErrSubjectNotFound)
	}
	if !e.Kind.Broadcast() && (e.PatientID == nil || *e.PatientID == uuid.Nil) {
		return ErrPatientRequired
	}
	return nil
}
