package annotate

import "fmt"

// Stage is a step of the annotation state machine. A pass moves through the
// stages strictly in order.
type Stage int

const (
	Created Stage = iota
	Tokenized
	LanguageIdentified
	POSTagged
	Lemmatized
	EntitiesResolved
	Complete
)

var stageNames = [...]string{
	Created:            "created",
	Tokenized:          "tokenized",
	LanguageIdentified: "language_identified",
	POSTagged:          "pos_tagged",
	Lemmatized:         "lemmatized",
	EntitiesResolved:   "entities_resolved",
	Complete:           "complete",
}

func (s Stage) String() string {
	if int(s) >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// StageError reports the stage an annotation pass failed at.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("annotate: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
