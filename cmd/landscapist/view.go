package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/NCSOPHAL/landscapist"
	"github.com/NCSOPHAL/landscapist/internal/config"
	"github.com/NCSOPHAL/landscapist/loader"
	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
	"github.com/NCSOPHAL/landscapist/render"
)

type viewOptions struct {
	width       int
	height      int
	scale       string
	quality     string
	filter      string
	alt         string
	ascii       bool
	refresh     bool
	interactive bool
	timeout     time.Duration
}

func newViewCmd(root *rootFlags) *cobra.Command {
	opts := viewOptions{}

	cmd := &cobra.Command{
		Use:   "view <source>",
		Short: "Render an image to the terminal",
		Long: `Render an image to the terminal as half-block cells or ASCII art.

The source may be an HTTP(S) URL, a file path, a git source of the form
git+https://host/repo.git?ref=main#path/to/image.png, or the name of a
source defined in the configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateViewOptions(opts); err != nil {
				return err
			}
			return runView(cmd, root, opts, args[0])
		},
	}

	cmd.Flags().IntVarP(&opts.width, "width", "W", 0, "Output width in cells (default: terminal width)")
	cmd.Flags().IntVarP(&opts.height, "height", "H", 0, "Output height in cells (default: terminal height)")
	cmd.Flags().StringVar(&opts.scale, "scale", "", "Scale mode: fit, fill, stretch or original")
	cmd.Flags().StringVar(&opts.quality, "quality", "", "Scaling quality: low or high")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Colour filter: none, grayscale, sepia or invert")
	cmd.Flags().StringVar(&opts.alt, "alt", "", "Description shown under the image")
	cmd.Flags().BoolVar(&opts.ascii, "ascii", false, "Render with ASCII characters instead of half blocks")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "Bypass caches and refetch the source")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Open an interactive viewer session")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort the load after this duration")

	return cmd
}

func runView(cmd *cobra.Command, root *rootFlags, opts viewOptions, source string) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	log, err := buildLogger(cfg, root.verbose)
	if err != nil {
		return err
	}

	l, err := buildLoader(cfg, log)
	if err != nil {
		return err
	}

	req, alt := resolveSource(cfg, source)
	if opts.alt != "" {
		alt = opts.alt
	}
	if opts.refresh {
		req = req.WithRefresh(true)
	}

	lopts := presentationOptions(cfg, opts, alt)

	if opts.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode requires a terminal")
		}
		// Zero dimensions keep the component tracking window size.
		lopts.Width = opts.width
		lopts.Height = opts.height
		return runViewer(l, req, lopts)
	}

	width, height := opts.width, opts.height
	if width <= 0 || height <= 0 {
		tw, th := terminalSize()
		if width <= 0 {
			width = tw
		}
		if height <= 0 {
			height = th
		}
	}
	lopts.Width, lopts.Height = width, height

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	payload, err := l.Load(ctx, req)
	if err != nil {
		// A failed refresh can still carry the last good image.
		if partial := pkgerrors.Partial(err); partial != nil {
			ropts := renderOptions(lopts)
			ropts.Alpha = 0.4
			fmt.Fprintln(cmd.OutOrStdout(), render.Render(partial, ropts))
		}
		return err
	}

	ropts := renderOptions(lopts)
	if alt != "" && ropts.Height > 1 {
		ropts.Height--
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Render(payload.Image, ropts))
	if alt != "" {
		fmt.Fprintln(cmd.OutOrStdout(), color.New(color.Faint).Sprint(alt))
	}

	return nil
}

// presentationOptions merges flags over configuration defaults.
func presentationOptions(cfg *config.Config, opts viewOptions, alt string) landscapist.Options {
	scale := opts.scale
	if scale == "" {
		scale = cfg.Render.Scale
	}
	quality := opts.quality
	if quality == "" {
		quality = cfg.Render.Quality
	}
	filterName := opts.filter
	if filterName == "" {
		filterName = cfg.Render.Filter
	}

	out := landscapist.DefaultOptions()
	out.Scale = render.ScaleMode(scale)
	out.Quality = render.Quality(quality)
	out.Filter = filterFromName(filterName)
	out.ASCII = opts.ascii || cfg.Render.ASCII
	out.Alt = alt
	return out
}

func filterFromName(name string) render.ColorFilter {
	switch name {
	case "grayscale":
		return render.Grayscale()
	case "sepia":
		return render.Sepia()
	case "invert":
		return render.Invert()
	}
	return nil
}

func renderOptions(o landscapist.Options) render.Options {
	return render.Options{
		Width:      o.Width,
		Height:     o.Height,
		Scale:      o.Scale,
		Quality:    o.Quality,
		AlignX:     o.AlignX,
		AlignY:     o.AlignY,
		Alpha:      o.Alpha,
		Filter:     o.Filter,
		Background: o.Background,
		ASCII:      o.ASCII,
	}
}

func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	// Leave the shell prompt a line to come back to.
	if h > 1 {
		h--
	}
	return w, h
}

var viewerHelpStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("241")) // Dim gray

// viewerModel wraps the image component in a minimal interactive session.
type viewerModel struct {
	img landscapist.Model
}

func newViewerModel(l landscapist.Loader, req landscapist.Request, opts landscapist.Options) viewerModel {
	return viewerModel{
		img: landscapist.NewFromRequest(l, req, landscapist.WithOptions(opts)),
	}
}

func (m viewerModel) Init() tea.Cmd {
	return m.img.Init()
}

func (m viewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.img = m.img.Close()
			return m, tea.Quit
		case "r":
			var cmd tea.Cmd
			m.img, cmd = m.img.Refresh()
			return m, cmd
		}
	case tea.WindowSizeMsg:
		// Reserve the help line.
		msg.Height--
		var cmd tea.Cmd
		m.img, cmd = m.img.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.img, cmd = m.img.Update(msg)
	return m, cmd
}

func (m viewerModel) View() string {
	return m.img.View() + "\n" + viewerHelpStyle.Render("r reload • q quit")
}

func runViewer(l *loader.Loader, req landscapist.Request, opts landscapist.Options) error {
	p := tea.NewProgram(newViewerModel(l, req, opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}
