package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"

	appErrors "github.com/unclebandit/mailmerge-backend/internal/errors"
	"github.com/unclebandit/mailmerge-backend/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// RecipientSource is the raw input of a send request. Exactly one of CSV or
// the manual JSON lists is used, depending on Manual.
type RecipientSource struct {
	Manual         bool
	CSV            []byte
	VariablesJSON  string
	RecipientsJSON string
}

// ResolveRecipients turns either input mode into a variable schema and an
// ordered recipient list.
func ResolveRecipients(src RecipientSource) ([]string, []model.Recipient, error) {
	if src.Manual {
		return ManualRecipientsJSON(src.VariablesJSON, src.RecipientsJSON)
	}
	if src.CSV == nil {
		return nil, nil, appErrors.NewValidation("csvFile", "CSV file is required")
	}
	return ParseCSVRecipients(src.CSV)
}

// ParseCSVRecipients reads a CSV whose first column holds the recipient
// address. The remaining header cells name the template variables. Rows are
// padded or truncated so each recipient carries one value per variable.
func ParseCSVRecipients(data []byte) ([]string, []model.Recipient, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, appErrors.NewMalformedInput("csv", "CSV must have at least one column", nil)
	}
	if err != nil {
		return nil, nil, appErrors.NewMalformedInput("csv", "unreadable header row", err)
	}
	if len(header) < 1 {
		return nil, nil, appErrors.NewMalformedInput("csv", "CSV must have at least one column", nil)
	}

	variables := make([]string, 0, len(header)-1)
	seen := map[string]bool{}
	for i, h := range header[1:] {
		name := strings.TrimSpace(h)
		if name == "" {
			return nil, nil, appErrors.NewMalformedInput("csv", "column "+strconv.Itoa(i+2)+" has no header", nil)
		}
		if seen[name] {
			return nil, nil, appErrors.NewMalformedInput("csv", "duplicate column "+name, nil)
		}
		seen[name] = true
		variables = append(variables, name)
	}

	recipients := []model.Recipient{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, appErrors.NewMalformedInput("csv", "unreadable data row", err)
		}
		if isBlankRow(row) {
			continue
		}

		values := make([]string, len(variables))
		for i := range values {
			if i+1 < len(row) {
				values[i] = row[i+1]
			}
		}
		recipients = append(recipients, model.Recipient{
			Email:          strings.TrimSpace(row[0]),
			VariableValues: values,
		})
	}

	if err := validateRecipients(variables, recipients); err != nil {
		return nil, nil, err
	}
	return variables, recipients, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type manualRecipient struct {
	Email          string   `json:"email"`
	VariableValues []string `json:"variableValues"`
}

// ManualRecipientsJSON decodes the JSON-encoded lists sent by the compose
// form in manual mode. Empty strings are treated as empty lists.
func ManualRecipientsJSON(variablesJSON, recipientsJSON string) ([]string, []model.Recipient, error) {
	variables := []string{}
	if strings.TrimSpace(variablesJSON) != "" {
		if err := json.Unmarshal([]byte(variablesJSON), &variables); err != nil {
			return nil, nil, appErrors.NewMalformedInput("variables", "expected a JSON array of strings", err)
		}
	}

	var raw []manualRecipient
	if strings.TrimSpace(recipientsJSON) != "" {
		if err := json.Unmarshal([]byte(recipientsJSON), &raw); err != nil {
			return nil, nil, appErrors.NewMalformedInput("recipients", "expected a JSON array of recipients", err)
		}
	}

	recipients := make([]model.Recipient, 0, len(raw))
	for _, r := range raw {
		recipients = append(recipients, model.Recipient{
			Email:          strings.TrimSpace(r.Email),
			VariableValues: r.VariableValues,
		})
	}
	return ManualRecipients(variables, recipients)
}

// ManualRecipients checks caller-supplied lists against each other. Short
// value lists are padded with "", longer ones are rejected.
func ManualRecipients(variables []string, recipients []model.Recipient) ([]string, []model.Recipient, error) {
	if variables == nil {
		variables = []string{}
	}
	seen := make(map[string]bool, len(variables))
	for _, name := range variables {
		if strings.TrimSpace(name) == "" {
			return nil, nil, appErrors.NewValidation("variables", "variable names must not be empty")
		}
		if seen[name] {
			return nil, nil, appErrors.NewValidation("variables", "duplicate variable name "+name)
		}
		seen[name] = true
	}

	out := make([]model.Recipient, len(recipients))
	for i, r := range recipients {
		if len(r.VariableValues) > len(variables) {
			return nil, nil, appErrors.NewValidation("recipients",
				"recipient "+r.Email+" has more values than declared variables")
		}
		values := make([]string, len(variables))
		copy(values, r.VariableValues)
		out[i] = model.Recipient{Email: r.Email, VariableValues: values}
	}

	if err := validateRecipients(variables, out); err != nil {
		return nil, nil, err
	}
	return variables, out, nil
}

func validateRecipients(variables []string, recipients []model.Recipient) error {
	for i, r := range recipients {
		if r.Email == "" {
			return appErrors.NewValidation("recipients", "recipient at position "+strconv.Itoa(i+1)+" has no email address")
		}
		if len(r.VariableValues) != len(variables) {
			return errors.New("recipient values are not aligned with variables")
		}
	}
	return nil
}
