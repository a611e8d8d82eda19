package view

import (
	"strings"

	"github.com/deemkeen/postbox/store"
)

const (
	FieldTitle = "title"
	FieldBody  = "body"

	MsgTitleRequired = "You must provide a title."
	MsgBodyRequired  = "You must provide body content."
)

type FieldState struct {
	Value     string
	IsInvalid bool
	Message   string
}

// Rule validates one field. Check returns true for an acceptable value.
type Rule struct {
	Field   string
	Check   func(value string) bool
	Message string
}

func Required(field string, message string) Rule {
	return Rule{
		Field:   field,
		Check:   func(v string) bool { return strings.TrimSpace(v) != "" },
		Message: message,
	}
}

// PostRules are the title and body checks shared by the create and edit
// screens.
var PostRules = []Rule{
	Required(FieldTitle, MsgTitleRequired),
	Required(FieldBody, MsgBodyRequired),
}

// FormState is the editable part of a post form. SendCount only ever goes
// up; each increment is one accepted submission.
type FormState struct {
	Fields    map[string]FieldState
	IsSaving  bool
	SendCount uint
}

func (f FormState) Value(field string) string {
	return f.Fields[field].Value
}

func (f FormState) HasErrors() bool {
	for _, fs := range f.Fields {
		if fs.IsInvalid {
			return true
		}
	}
	return false
}

func newFormState(rules []Rule) FormState {
	fields := make(map[string]FieldState, len(rules))
	for _, r := range rules {
		fields[r.Field] = FieldState{}
	}
	return FormState{Fields: fields}
}

type FormAction interface {
	isFormAction()
}

type FieldChange struct {
	Field string
	Value string
}

type FieldCheck struct {
	Field string
}

type SubmitRequest struct{}

type SaveRequestStarted struct{}

type SaveRequestFinished struct{}

func (FieldChange) isFormAction()         {}
func (FieldCheck) isFormAction()          {}
func (SubmitRequest) isFormAction()       {}
func (SaveRequestStarted) isFormAction()  {}
func (SaveRequestFinished) isFormAction() {}

// reduceForm applies a form action. Fields map entries are copied, never
// written in place.
func reduceForm(rules []Rule, prev FormState, action FormAction) FormState {
	next := prev
	switch a := action.(type) {
	case FieldChange:
		fs := prev.Fields[a.Field]
		fs.Value = a.Value
		fs.IsInvalid = false
		fs.Message = ""
		next.Fields = withField(prev.Fields, a.Field, fs)
	case FieldCheck:
		for _, r := range rules {
			if r.Field != a.Field {
				continue
			}
			fs := prev.Fields[a.Field]
			if !r.Check(fs.Value) {
				fs.IsInvalid = true
				fs.Message = r.Message
				next.Fields = withField(prev.Fields, a.Field, fs)
			}
			break
		}
	case SubmitRequest:
		if !prev.IsSaving && !prev.HasErrors() {
			next.SendCount = prev.SendCount + 1
		}
	case SaveRequestStarted:
		next.IsSaving = true
	case SaveRequestFinished:
		next.IsSaving = false
	}
	return next
}

func withField(fields map[string]FieldState, name string, fs FieldState) map[string]FieldState {
	out := make(map[string]FieldState, len(fields)+1)
	for k, v := range fields {
		out[k] = v
	}
	out[name] = fs
	return out
}

// onSubmitted returns a listener calling fn once per SendCount increase.
func onSubmitted[S any](sendCount func(S) uint, fn func(S)) store.Listener[S] {
	return func(prev, next S) {
		if sendCount(next) > sendCount(prev) {
			fn(next)
		}
	}
}

// submission is the action sequence of one submit: every rule's check,
// then the save request. The reducer refuses the request when any check
// failed.
func submission(rules []Rule) []FormAction {
	out := make([]FormAction, 0, len(rules)+1)
	for _, r := range rules {
		out = append(out, FieldCheck{Field: r.Field})
	}
	return append(out, SubmitRequest{})
}
