package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"persona/internal/config"
)

const starterConfig = `# persona configuration

[llm]
model = "gpt-4o-mini"
# api_key can also come from OPENAI_API_KEY
api_key = ""

[owner]
name = "Your Name"
summary_path = "me/summary.txt"
profile_pdf = "me/profile.pdf"

[pushover]
# Leave empty to disable push notifications.
user = ""
token = ""

[gateway]
addr = ":8090"

[trace]
# Leave endpoint empty to disable tracing.
endpoint = ""
`

var Cmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.Path()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists at %s", path)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(starterConfig), 0o600); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", path)
		return nil
	},
}
