package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Condition operators and rule-set logic values.
const (
	OperatorEquals    = "equals"
	OperatorNotEquals = "notEquals"
	OperatorContains  = "contains"

	LogicAnd = "AND"
	LogicOr  = "OR"
)

// Question types supported by the builder. These mirror the Airtable field
// types a form can write to.
const (
	TypeSingleLineText      = "singleLineText"
	TypeMultilineText       = "multilineText"
	TypeSingleSelect        = "singleSelect"
	TypeMultipleSelects     = "multipleSelects"
	TypeMultipleAttachments = "multipleAttachments"
)

var supportedQuestionTypes = map[string]bool{
	TypeSingleLineText:      true,
	TypeMultilineText:       true,
	TypeSingleSelect:        true,
	TypeMultipleSelects:     true,
	TypeMultipleAttachments: true,
}

func IsSupportedQuestionType(t string) bool {
	return supportedQuestionTypes[t]
}

// Condition gates a question on another question's answer. The referenced
// key may point at any question in the form, including one declared later;
// evaluation only ever sees collected answers, so an unanswered reference
// simply fails the condition.
type Condition struct {
	QuestionKey string `bson:"questionKey" json:"questionKey"`
	Operator    string `bson:"operator" json:"operator"`
	Value       any    `bson:"value" json:"value"`
}

type ConditionalRules struct {
	Logic      string      `bson:"logic" json:"logic"`
	Conditions []Condition `bson:"conditions" json:"conditions"`
}

type Question struct {
	QuestionKey      string            `bson:"questionKey" json:"questionKey"`
	AirtableFieldID  string            `bson:"airtableFieldId" json:"airtableFieldId"`
	Label            string            `bson:"label" json:"label"`
	Type             string            `bson:"type" json:"type"`
	Required         bool              `bson:"required" json:"required"`
	Options          []string          `bson:"options,omitempty" json:"options,omitempty"`
	ConditionalRules *ConditionalRules `bson:"conditionalRules,omitempty" json:"conditionalRules,omitempty"`
}

// Form maps questions onto columns of one Airtable table. WebhookID is set
// once change notifications are registered upstream; WebhookCursor is the
// watermark into the webhook payload queue, advanced only after a payload
// batch has been fully applied.
type Form struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Owner           primitive.ObjectID `bson:"owner" json:"owner"`
	Title           string             `bson:"title" json:"title"`
	AirtableBaseID  string             `bson:"airtableBaseId" json:"airtableBaseId"`
	AirtableTableID string             `bson:"airtableTableId" json:"airtableTableId"`
	Questions       []Question         `bson:"questions" json:"questions"`
	WebhookID       string             `bson:"webhookId,omitempty" json:"webhookId,omitempty"`
	WebhookCursor   int                `bson:"webhookCursor" json:"webhookCursor"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
