package record

import (
	"fmt"
	"strings"
)

const (
	FieldLeadName = "name"
	FieldCompany  = "company"
	FieldEmail    = "email"
	FieldRole     = "role"
	FieldUseCase  = "use_case"
	FieldTeamSize = "team_size"
	FieldTimeline = "timeline"
)

const LeadInProgress = "Lead in progress..."

// LeadDocument is one element of the shared leads array.
type LeadDocument struct {
	Name      *string `json:"name"`
	Company   *string `json:"company"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	UseCase   *string `json:"use_case"`
	TeamSize  *string `json:"team_size"`
	Timeline  *string `json:"timeline"`
	Timestamp string  `json:"timestamp"`
}

var leadSchema = &Schema{
	Name: "lead",
	Noun: "Lead",
	Fields: []Field{
		{Key: FieldLeadName, Label: "name", Kind: KindText, Required: true, Desc: "Prospect's full name"},
		{Key: FieldCompany, Label: "company", Kind: KindText, Desc: "Company or organisation"},
		{Key: FieldEmail, Label: "email", Kind: KindText, Required: true, Desc: "Contact email address"},
		{Key: FieldRole, Label: "role", Kind: KindText, Desc: "Job title or role"},
		{Key: FieldUseCase, Label: "use case", Kind: KindText, Required: true, Desc: "What they want to build or solve"},
		{Key: FieldTeamSize, Label: "team size", Kind: KindText, Desc: "Size of the team that would use the product"},
		{Key: FieldTimeline, Label: "timeline", Kind: KindText, Desc: "When they plan to start"},
	},
	Encode:    encodeLead,
	Summarize: summarizeLead,
}

// LeadSchema is shared and must not be mutated.
func LeadSchema() *Schema {
	return leadSchema
}

func NewLead() *Record {
	return leadSchema.New()
}

func encodeLead(r *Record, stamp Stamp) any {
	return LeadDocument{
		Name:      r.optional(FieldLeadName),
		Company:   r.optional(FieldCompany),
		Email:     r.optional(FieldEmail),
		Role:      r.optional(FieldRole),
		UseCase:   r.optional(FieldUseCase),
		TeamSize:  r.optional(FieldTeamSize),
		Timeline:  r.optional(FieldTimeline),
		Timestamp: stamp.Timestamp(),
	}
}

func summarizeLead(r *Record) string {
	if !r.IsComplete() {
		return LeadInProgress
	}

	name, _ := r.String(FieldLeadName)
	email, _ := r.String(FieldEmail)
	useCase, _ := r.String(FieldUseCase)

	var b strings.Builder
	fmt.Fprintf(&b, "%s <%s>", name, email)
	if company, ok := r.String(FieldCompany); ok {
		fmt.Fprintf(&b, " at %s", company)
	}
	if role, ok := r.String(FieldRole); ok {
		fmt.Fprintf(&b, " (%s)", role)
	}
	fmt.Fprintf(&b, ", use case: %s", strings.TrimSuffix(useCase, "."))
	if size, ok := r.String(FieldTeamSize); ok {
		fmt.Fprintf(&b, ", team of %s", size)
	}
	if timeline, ok := r.String(FieldTimeline); ok {
		fmt.Fprintf(&b, ", timeline %s", timeline)
	}
	return b.String()
}
