package linkctl

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	linkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

// LinkResult is what `linkctl sign` prints
type LinkResult struct {
	SessionID string `json:"sessionId" yaml:"session_id"`
	URL       string `json:"url" yaml:"url"`
	Token     string `json:"token,omitempty" yaml:"token,omitempty"`
	ExpiresIn int64  `json:"expiresIn,omitempty" yaml:"expires_in,omitempty"`
}

// Render writes v as json, yaml or styled text
func Render(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "", "text":
		return renderText(w, v)
	default:
		return fmt.Errorf("unknown output format %q (text, json, yaml)", format)
	}
}

func renderText(w io.Writer, v interface{}) error {
	switch val := v.(type) {
	case *LinkResult:
		fmt.Fprintln(w, titleStyle.Render("🔗 External link"))
		fmt.Fprintf(w, "%s %s\n", labelStyle.Render("session:"), val.SessionID)
		if val.Token != "" {
			fmt.Fprintf(w, "%s %ds\n", labelStyle.Render("expires in:"), val.ExpiresIn)
		}
		fmt.Fprintln(w, linkStyle.Render(val.URL))
		return nil
	case map[string]interface{}:
		fmt.Fprintln(w, titleStyle.Render("📄 Session record"))
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s %v\n", labelStyle.Render(k+":"), val[k])
		}
		return nil
	default:
		_, err := fmt.Fprintf(w, "%v\n", v)
		return err
	}
}
