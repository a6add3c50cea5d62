package main

import (
	"fmt"
)

func validateViewOptions(opts viewOptions) error {
	switch opts.scale {
	case "", "fit", "fill", "stretch", "original":
	default:
		return fmt.Errorf("invalid scale mode %q (expected fit, fill, stretch or original)", opts.scale)
	}

	switch opts.quality {
	case "", "low", "high":
	default:
		return fmt.Errorf("invalid quality %q (expected low or high)", opts.quality)
	}

	switch opts.filter {
	case "", "none", "grayscale", "sepia", "invert":
	default:
		return fmt.Errorf("invalid filter %q (expected none, grayscale, sepia or invert)", opts.filter)
	}

	if opts.width < 0 || opts.height < 0 {
		return fmt.Errorf("width and height must not be negative")
	}

	return nil
}
