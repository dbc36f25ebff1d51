package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mrjoshuak/go-pixelcore/pixel"
	"github.com/mrjoshuak/go-pixelcore/pixutil"
)

// NewInfoCmd summarizes a snapshot file.
func NewInfoCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <snapshot>",
		Short: "summarize a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := pixutil.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Print(pixutil.SnapshotInfo(s))
			return nil
		},
	}
	return cmd
}

// NewDumpCmd prints the textual dump of a snapshot's entity.
func NewDumpCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <snapshot>",
		Short: "print a snapshot's tabular dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := pixutil.Load(args[0])
			if err != nil {
				return err
			}
			var d pixutil.Dumper
			if s.Image != nil {
				d = s.Image
			} else {
				d = s.Mask
			}
			if out, _ := cmd.Flags().GetString("output"); out != "" {
				slog.Info("writing dump", "path", out)
				return pixutil.DumpToFile(out, d)
			}
			fmt.Print(d.Dump())
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "write the dump to this file instead of stdout")
	return cmd
}

// NewStatsCmd prints windowed statistics of an image snapshot.
func NewStatsCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats <snapshot>",
		Short: "print windowed statistics of an image snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := pixutil.Load(args[0])
			if err != nil {
				return err
			}
			if s.Image == nil {
				return fmt.Errorf("pixctl: %s holds a mask, not an image", args[0])
			}
			win := pixel.FullWindow
			x0, _ := cmd.Flags().GetInt("x0")
			y0, _ := cmd.Flags().GetInt("y0")
			x1, _ := cmd.Flags().GetInt("x1")
			y1, _ := cmd.Flags().GetInt("y1")
			if x0 != 0 || y0 != 0 || x1 != 0 || y1 != 0 {
				win = pixel.Window{X0: x0, Y0: y0, X1: x1, Y1: y1}
			}
			im := s.Image
			min, err := im.Min(win)
			if err != nil {
				return err
			}
			max, _ := im.Max(win)
			mean, _ := im.Mean(win)
			median, _ := im.Median(win)
			fmt.Printf("min: %g\nmax: %g\nmean: %g\nmedian: %g\n", min, max, mean, median)
			if sdev, err := im.Stdev(win); err == nil {
				fmt.Printf("stdev: %g\n", sdev)
			}
			if flux, err := im.Flux(win); err == nil {
				fmt.Printf("flux: %g\n", flux)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.Int("x0", 0, "window left edge (0-based, inclusive)")
	f.Int("y0", 0, "window top edge")
	f.Int("x1", 0, "window right edge")
	f.Int("y1", 0, "window bottom edge")
	return cmd
}
