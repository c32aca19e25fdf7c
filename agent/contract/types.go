package contract

type Variant string

const (
	VariantOrder Variant = "order"
	VariantLead  Variant = "lead"
)

func (v Variant) Valid() bool {
	return v == VariantOrder || v == VariantLead
}

type ToolRequest struct {
	ID   string         `json:"id,omitempty"`
	Tool string         `json:"tool"`
	Args map[string]any `json:"args,omitempty"`
	// DecodeErr is set when the call could not be decoded. Such a request is
	// answered with an error and never reaches a handler.
	DecodeErr string `json:"-"`
}

type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Content is the text surfaced back to the conversation for this result.
func (r ToolResult) Content() string {
	if s, ok := r.Result.(string); ok && s != "" {
		return s
	}
	if r.Error != "" {
		return "error: " + r.Error
	}
	return ""
}
