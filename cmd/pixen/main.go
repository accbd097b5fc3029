package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/engine"
	"github.com/pixenhq/pixen/internal/image"
	"github.com/pixenhq/pixen/internal/log"
	"github.com/pixenhq/pixen/internal/message"
	"github.com/pixenhq/pixen/internal/provider"
	"github.com/pixenhq/pixen/internal/provider/google"
	"github.com/pixenhq/pixen/internal/session"
	"github.com/pixenhq/pixen/internal/tui"

	// Import enhancers for registration
	_ "github.com/pixenhq/pixen/internal/provider/anthropic"
	_ "github.com/pixenhq/pixen/internal/provider/openai"
)

var version = "0.1.0"

func init() {
	// Load .env file if it exists (silent fail if not found)
	_ = godotenv.Load()

	// Initialize logging (enabled via PIXEN_DEBUG=1)
	_ = log.Init()
}

func main() {
	defer log.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	inputFlags []string
	outputFlag string
)

var rootCmd = &cobra.Command{
	Use:   "pixen [prompt]",
	Short: "Pixen - chat-driven image generation and editing",
	Long: `Pixen is a chat-style editor for AI-generated images.
Describe an image to create it, then keep talking to edit the result.

Non-interactive mode:
  pixen "a lighthouse at dusk"            Generate an image
  pixen "make it snowy" -i photo.png      Edit an input image
  pixen "wider crop" -i a.png -o out.png  Choose the output file`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) > 0 {
			if err := runOneShot(strings.Join(args, " ")); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.Flags().StringArrayVarP(&inputFlags, "input", "i", nil, "Input image file (repeatable)")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output image file")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("pixen version %s\n", version)
	},
}

func loadConfig() *config.Config {
	cfg, err := config.NewLoader().Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid config, using defaults: %v\n", err)
		return config.NewConfig()
	}
	return cfg
}

func newGateway(ctx context.Context, cfg *config.Config) (provider.Gateway, error) {
	enhancer, err := provider.NewEnhancer(ctx, cfg.Enhancer, cfg.EnhanceModel)
	if err != nil {
		return nil, err
	}
	return google.NewGateway(ctx, cfg.ImageModel, enhancer)
}

func openStore(cfg *config.Config) (*session.Store, error) {
	if cfg.DataDir != "" {
		return session.NewStore(filepath.Join(cfg.DataDir, "sessions"))
	}
	return session.Open()
}

func runInteractive() error {
	cfg := loadConfig()

	gateway, err := newGateway(context.Background(), cfg)
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	sessions := session.NewManager(store)
	sessions.Initialize()
	defer sessions.Close()

	return tui.Run(sessions, engine.New(sessions, gateway), cfg)
}

// runOneShot drives a single send turn against a throwaway session and
// writes the result to disk or stdout.
func runOneShot(prompt string) error {
	ctx := context.Background()
	cfg := loadConfig()

	gateway, err := newGateway(ctx, cfg)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "pixen-oneshot-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	store, err := session.NewStore(filepath.Join(tmpDir, "sessions"))
	if err != nil {
		return err
	}
	sessions := session.NewManager(store)
	sessions.Initialize()
	defer sessions.Close()

	eng := engine.New(sessions, gateway)
	id := sessions.SelectedID()

	if len(inputFlags) > 0 {
		var refs []message.ImageRef
		for _, path := range inputFlags {
			info, err := image.Load(path)
			if err != nil {
				return err
			}
			refs = append(refs, info.ToRef())
		}
		eng.SetPending(id, refs)
	}

	call, err := eng.BeginSend(id, prompt)
	if err != nil {
		return err
	}
	result, genErr := eng.Generate(ctx, call)
	eng.Finish(call, result, genErr)
	if genErr != nil {
		return genErr
	}

	if result == nil || result.ImageURL == "" {
		if result != nil && result.Text != "" {
			fmt.Println(result.Text)
			return nil
		}
		return fmt.Errorf("the model returned no image or text")
	}

	ref, err := message.ImageFromDataURL(result.ImageURL)
	if err != nil {
		return fmt.Errorf("unexpected image payload: %w", err)
	}
	data, err := base64.StdEncoding.DecodeString(ref.Base64Data)
	if err != nil {
		return fmt.Errorf("unexpected image payload: %w", err)
	}

	out := outputFlag
	if out == "" {
		out = fmt.Sprintf("pixen-%d.png", time.Now().Unix())
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}
