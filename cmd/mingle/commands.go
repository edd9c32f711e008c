package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/cobra"

	"github.com/yanhann10/mingle/internal/aiserver"
	"github.com/yanhann10/mingle/internal/config"
	"github.com/yanhann10/mingle/internal/profile"
	"github.com/yanhann10/mingle/internal/ragsync"
	"github.com/yanhann10/mingle/internal/storage"
)

// --- seed ---

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load profiles into the store",
	Long: `Load profiles into the store and push them to the AI server's index.

Examples:
  mingle seed --file ./users.json
  mingle seed --file ./users.json --reset
  mingle seed --pdf ./resume.pdf --name "Maya Patel" --role "Design Lead" --company "Figma Co"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		reset, _ := cmd.Flags().GetBool("reset")

		if file == "" && pdfPath == "" {
			return fmt.Errorf("one of --file or --pdf is required")
		}

		cfg := config.Load()
		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		if reset {
			if err := store.DeleteAllProfiles(); err != nil {
				return fmt.Errorf("resetting profiles: %w", err)
			}
			printStep("Cleared existing profiles")
		}

		var drafts []profile.Draft
		switch {
		case file != "":
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading seed file: %w", err)
			}
			if err := json.Unmarshal(data, &drafts); err != nil {
				return fmt.Errorf("parsing seed file: %w", err)
			}
		case pdfPath != "":
			draft, err := draftFromPDF(cmd, pdfPath)
			if err != nil {
				return err
			}
			drafts = append(drafts, draft)
		}

		manager := profile.NewManager(store)
		dispatcher := ragsync.NewDispatcher(aiserver.New(cfg.AI.BaseURL), 0)
		defer dispatcher.Close()

		created := 0
		for _, d := range drafts {
			p, err := manager.Create(d)
			if err != nil {
				printError("Skipping %q: %v", d.Name, err)
				continue
			}
			dispatcher.Dispatch(p)
			created++
		}

		printSuccess("Seeded %d profile(s)", created)
		return nil
	},
}

// draftFromPDF builds a profile draft whose bio is the plain text of a PDF,
// typically a resume or speaker one-pager.
func draftFromPDF(cmd *cobra.Command, path string) (profile.Draft, error) {
	name, _ := cmd.Flags().GetString("name")
	role, _ := cmd.Flags().GetString("role")
	company, _ := cmd.Flags().GetString("company")
	if name == "" {
		return profile.Draft{}, fmt.Errorf("--name is required with --pdf")
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return profile.Draft{}, fmt.Errorf("opening PDF: %w", err)
	}
	defer f.Close()

	text, err := reader.GetPlainText()
	if err != nil {
		return profile.Draft{}, fmt.Errorf("extracting PDF text: %w", err)
	}
	var bio bytes.Buffer
	if _, err := bio.ReadFrom(text); err != nil {
		return profile.Draft{}, fmt.Errorf("reading PDF text: %w", err)
	}

	return profile.Draft{
		Name:    name,
		Role:    role,
		Company: company,
		Bio:     bio.String(),
	}, nil
}

func init() {
	seedCmd.Flags().String("file", "", "JSON file with an array of profiles")
	seedCmd.Flags().String("pdf", "", "PDF file to import as a single profile's bio")
	seedCmd.Flags().String("name", "", "profile name (with --pdf)")
	seedCmd.Flags().String("role", "", "profile role (with --pdf)")
	seedCmd.Flags().String("company", "", "profile company (with --pdf)")
	seedCmd.Flags().Bool("reset", false, "delete all existing profiles first")
}

// --- status ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mingle system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		client := &http.Client{Timeout: 2 * time.Second}

		serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
		resp, err := client.Get(serverURL + "/health")
		if err != nil {
			printStatus("Server", "stopped")
		} else {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				printStatus("Server", "running on port %d", cfg.Server.Port)
			} else {
				printStatus("Server", "error (HTTP %d)", resp.StatusCode)
			}
		}

		if aiserver.New(cfg.AI.BaseURL).IsRunning(context.Background()) {
			printStatus("AI server", "running at %s", cfg.AI.BaseURL)
		} else {
			printStatus("AI server", "not reachable at %s", cfg.AI.BaseURL)
		}

		store, err := storage.Open(cfg.Storage.DataDir)
		if err == nil {
			if count, cerr := store.CountProfiles(); cerr == nil {
				printStatus("Profiles", "%d", count)
			}
			store.Close()
		}

		printStatus("Data dir", "%s", cfg.Storage.DataDir)
		return nil
	},
}
