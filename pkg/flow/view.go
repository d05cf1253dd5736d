package flow

// QuestionView is a question node formatted for display to the respondent.
type QuestionView struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	InputType   InputType  `json:"input_type"`
	Options     []string   `json:"options"`
	Fields      []Field    `json:"fields"`
	Required    bool       `json:"required"`
	HelpText    string     `json:"help_text,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	AllowOther  bool       `json:"allow_other"`
	Validation  Validation `json:"validation"`
}

func (n *Node) View() *QuestionView {
	options := n.Options
	if options == nil {
		options = []string{}
	}
	fields := n.Fields
	if fields == nil {
		fields = []Field{}
	}
	return &QuestionView{
		ID:          n.ID,
		Text:        n.Text,
		InputType:   n.InputType,
		Options:     options,
		Fields:      fields,
		Required:    n.Required,
		HelpText:    n.HelpText,
		Placeholder: n.Placeholder,
		AllowOther:  n.AllowOther,
		Validation:  n.Validation,
	}
}
