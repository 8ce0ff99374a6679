// Package services - claim update commands.
//
// Partial claim updates are expressed as a tagged union of commands instead
// of a generic field bag. The reference workflow advances on field presence
// ("this payload includes first_contact_notes"), so the HTTP layer builds one
// command per supplied key; a key that is absent from the payload never
// produces a command and therefore never triggers a transition, while a key
// present with an empty value still does.
package services

import "time"

// Command is one element of a partial claim update. Commands in a single
// Update call are applied in order against the evolving claim state, so a
// payload carrying both stage fields advances both transitions correctly.
type Command interface{ isCommand() }

// SetFirstContactNotes records the first-contact narrative. When the claim is
// in the first-contact state this advances it to treatment and hands
// ownership to the routed treatment owner.
type SetFirstContactNotes struct{ Notes string }

// SetTreatmentProgress records treatment progress narrative. Never triggers a
// transition.
type SetTreatmentProgress struct{ Text string }

// SetFinalSolution records the proposed solution. When the claim is in
// treatment this advances it to pending review.
type SetFinalSolution struct{ Solution string }

// SetClosingNotes records closing narrative. Never triggers a transition.
type SetClosingNotes struct{ Notes string }

// SetClosingDate sets or clears the closing date. A non-nil date populates
// the derived compliance fields when a theoretical deadline exists; a nil
// date is an explicit clear and wipes closing date and compliance fields
// together. State is never changed by this command.
type SetClosingDate struct{ Date *time.Time }

// SetBusinessDaysDelay records the operator-entered business-day delay
// override. The engine never computes this value.
type SetBusinessDaysDelay struct{ Days *int }

// SetFields patches the remaining non-triggering claim attributes. Nil
// pointers mean "not sent".
type SetFields struct {
	ProductID            *uint
	CustomerName         *string
	CustomerEmail        *string
	Description          *string
	ClassificationID     *uint
	ClassID              *uint
	CauseID              *uint
	ResponsibleProcessID *uint
}

func (SetFirstContactNotes) isCommand()  {}
func (SetTreatmentProgress) isCommand()  {}
func (SetFinalSolution) isCommand()      {}
func (SetClosingNotes) isCommand()       {}
func (SetClosingDate) isCommand()        {}
func (SetBusinessDaysDelay) isCommand()  {}
func (SetFields) isCommand()             {}
