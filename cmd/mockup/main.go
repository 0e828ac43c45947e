package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"mockup/internal/config"
	"mockup/internal/editor"
	"mockup/internal/scene"
	"mockup/internal/store"
	"mockup/internal/tui"
)

// Version is set during build with -ldflags
var version = "dev"

const defaultDesign = "untitled"

var rootCmd = &cobra.Command{
	Use:   "mockup [design]",
	Short: "Terminal editor for print mockups",
	Long:  `Mockup edits apparel print layouts in the terminal: boxes, labels and print-area guides, with undo, copy/paste and automatic saving.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		designID := defaultDesign
		if len(args) == 1 {
			designID = args[0]
		}
		if err := runEditor(designID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved designs",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, st := mustOpenStore()
		defer st.Close()

		designs, err := st.List(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(designs) == 0 {
			fmt.Printf("No designs in %s\n", cfg.StoreLocation())
			return
		}
		writeDesigns(os.Stdout, designs)
	},
}

var (
	exportPNG  string
	exportTXT  string
	exportSize [2]int
)

var exportCmd = &cobra.Command{
	Use:   "export <design>",
	Short: "Export a design as PNG or text",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if exportPNG == "" && exportTXT == "" {
			fmt.Fprintf(os.Stderr, "Error: pass --png or --txt\n")
			os.Exit(1)
		}
		_, st := mustOpenStore()
		defer st.Close()

		canvas, err := openDesign(context.Background(), st, args[0], false)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := exportDesign(canvas, exportPNG, exportTXT, exportSize[0], exportSize[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of Mockup",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Mockup version %s\n", version)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPNG, "png", "", "write a PNG image to this path")
	exportCmd.Flags().StringVar(&exportTXT, "txt", "", "write a text rendering to this path")
	exportCmd.Flags().IntVar(&exportSize[0], "width", 80, "text export width in cells")
	exportCmd.Flags().IntVar(&exportSize[1], "height", 24, "text export height in cells")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func mustOpenStore() (config.Config, store.Store) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	st, err := store.Open(cfg.Store, cfg.StoreLocation())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return cfg, st
}

func runEditor(designID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := slog.New(slog.DiscardHandler)
	if cfg.LogFile != "" {
		f, err := tea.LogToFile(cfg.LogFile, "mockup")
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	st, err := store.Open(cfg.Store, cfg.StoreLocation())
	if err != nil {
		return err
	}
	defer st.Close()

	canvas, err := openDesign(context.Background(), st, designID, true)
	if err != nil {
		return err
	}

	var program *tea.Program
	opts := editor.Options{
		DesignID:       designID,
		Persister:      st,
		HistoryLimit:   cfg.HistoryLimit,
		CoalesceWindow: cfg.CoalesceWindow,
		SaveDelay:      cfg.SaveDelay,
		SaveRetry:      cfg.SaveRetry,
		SaveTimeout:    cfg.SaveTimeout,
		PasteOffset:    cfg.PasteOffset,
		Logger:         logger,
		OnSave: func(err error) {
			// may run inside Update, so never block on the event loop
			go program.Send(tui.SaveResultMsg{Err: err})
		},
	}
	if cfg.SystemClipboard && !clipboard.Unsupported {
		opts.Mirror = clipboard.WriteAll
	}
	session, err := editor.NewSession(canvas, opts)
	if err != nil {
		return err
	}
	defer session.Close()

	model := tui.New(tui.Options{
		DesignID:   designID,
		Canvas:     canvas,
		Session:    session,
		Keymap:     editor.DefaultKeymap(cfg.PanStep),
		NudgeStep:  cfg.PanStep,
		ExportPath: cfg.SavePath,
		Logger:     logger,
	})
	program = tea.NewProgram(model, tea.WithAltScreen())
	logger.Info("editor started", "design", designID, "store", cfg.Store)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal interface: %w", err)
	}
	return nil
}

// openDesign loads a stored design. A missing design is an empty canvas
// when create is set.
func openDesign(ctx context.Context, st store.Store, designID string, create bool) (*scene.Canvas, error) {
	canvas := scene.NewCanvas()
	doc, err := st.Load(ctx, designID)
	if errors.Is(err, store.ErrNotFound) && create {
		return canvas, nil
	}
	if err != nil {
		return nil, err
	}
	if err := canvas.LoadDocument(doc); err != nil {
		return nil, fmt.Errorf("design %s: %w", designID, err)
	}
	return canvas, nil
}

func exportDesign(canvas *scene.Canvas, pngPath, txtPath string, width, height int) error {
	if pngPath != "" {
		if err := canvas.ExportPNGFile(pngPath); err != nil {
			return fmt.Errorf("export png: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", pngPath)
	}
	if txtPath != "" {
		f, err := os.Create(txtPath)
		if err != nil {
			return fmt.Errorf("export text: %w", err)
		}
		if err := canvas.ExportText(f, width, height); err != nil {
			f.Close()
			return fmt.Errorf("export text: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("export text: %w", err)
		}
		fmt.Printf("✓ Wrote %s\n", txtPath)
	}
	return nil
}

func writeDesigns(w io.Writer, designs []store.Design) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DESIGN\tSIZE\tUPDATED")
	for _, d := range designs {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.ID, d.Size, d.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}
	tw.Flush()
}
