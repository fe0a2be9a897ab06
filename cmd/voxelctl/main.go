// Command voxelctl is a flag-based diagnostic tool for the voxel
// diffusion core: it constructs a controller, optionally seeds one cell,
// steps it, and prints the generation, the seed cell's value (when one
// was seeded), and the live handle count. Where internal/ffi.CreateController fails, voxelctl is the one
// place in this repository that prints the wrapped cause chain
// LastError exposes, since the C ABI itself only ever returns a null
// handle.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/latticeforge/voxeldiffusion/internal/ffi"
)

var (
	width       = flag.Int("width", 16, "field width")
	height      = flag.Int("height", 16, "field height")
	depth       = flag.Int("depth", 16, "field depth")
	rate        = flag.Int("rate", 4, "diffusion-rate shift")
	threads     = flag.Int("threads", 0, "worker-pool size (0 = default)")
	generations = flag.Int("generations", 1, "number of step_blocking calls")
	seedX       = flag.Int("seed-x", -1, "x coordinate to seed (negative skips seeding)")
	seedY       = flag.Int("seed-y", -1, "y coordinate to seed")
	seedZ       = flag.Int("seed-z", -1, "z coordinate to seed")
	seedValue   = flag.Uint64("seed-value", 0, "value to write at the seed coordinate")
)

func main() {
	flag.Parse()

	handle := ffi.CreateController(int16(*width), int16(*height), int16(*depth), uint8(*rate), uint8(*threads))
	if handle == 0 {
		fmt.Fprintf(os.Stderr, "voxelctl: create_controller failed: %v\n", ffi.LastError())
		os.Exit(1)
	}
	defer ffi.DestroyController(handle)

	if *seedX >= 0 {
		ffi.FieldSet(handle, int16(*seedX), int16(*seedY), int16(*seedZ), uint32(*seedValue))
	}

	for gen := 0; gen < *generations; gen++ {
		ffi.StepBlocking(handle)
	}

	fmt.Fprintf(os.Stdout, "generation=%d\n", ffi.FieldGetGeneration(handle))
	if *seedX >= 0 {
		fmt.Fprintf(os.Stdout, "seed-cell=%d\n", ffi.FieldGet(handle, int16(*seedX), int16(*seedY), int16(*seedZ)))
	}
	fmt.Fprintf(os.Stdout, "live-handles=%d\n", ffi.LiveHandleCount())
}
