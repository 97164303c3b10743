package domain

// FieldType is the JSON type expected for a schema field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldNumber FieldType = "number"
	FieldArray  FieldType = "array"
	FieldObject FieldType = "object"
)

// SchemaField describes one field of the generator's output contract.
type SchemaField struct {
	Name        string
	Type        FieldType
	Required    bool
	Enum        []string
	Description string
	Fields      []SchemaField // element fields for arrays of objects
}

// SchemaDescriptor is the output contract embedded in every generation request.
// It is shared read-only across concurrent queries.
type SchemaDescriptor struct {
	Name   string
	Fields []SchemaField
}

// AnswerSchema returns the descriptor for StructuredAnswer.
func AnswerSchema() SchemaDescriptor {
	enum := make([]string, 0, len(Decisions()))
	for _, d := range Decisions() {
		enum = append(enum, d.String())
	}

	return SchemaDescriptor{
		Name: "structured_answer",
		Fields: []SchemaField{
			{
				Name:        "decision",
				Type:        FieldString,
				Required:    true,
				Enum:        enum,
				Description: "the verdict for the query",
			},
			{
				Name:        "amount",
				Type:        FieldNumber,
				Description: "non-negative amount when the query concerns a payable sum, otherwise null",
			},
			{
				Name:        "justification",
				Type:        FieldString,
				Required:    true,
				Description: "short explanation grounded in the evidence",
			},
			{
				Name:        "cited_clauses",
				Type:        FieldArray,
				Description: "evidence fragments supporting the decision",
				Fields: []SchemaField{
					{Name: "fragment_ref", Type: FieldString, Required: true, Description: "evidence reference such as E1"},
					{Name: "relevance_note", Type: FieldString, Description: "why the fragment matters"},
				},
			},
			{
				Name:        "confidence",
				Type:        FieldNumber,
				Required:    true,
				Description: "confidence between 0 and 1",
			},
		},
	}
}

// GenerationParams holds sampling parameters for the generator.
type GenerationParams struct {
	Temperature float64
	MaxTokens   int
}

// GenerationRequest is the fully rendered input for one generation call.
// Built fresh per query and never persisted.
type GenerationRequest struct {
	Query    string
	Evidence EvidenceSet
	Schema   SchemaDescriptor
	Params   GenerationParams

	// System is the rendered system instruction.
	System string

	// Prompt is the rendered user message (query, evidence and schema).
	Prompt string
}
