// Command lattedemo runs the surface cache on the noop backend: it
// resolves a guest surface, grows it in place, submits the frame and
// dumps the result as a TIFF image.
package main

import (
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/latte"
	"github.com/gogpu/latte/format"
	"github.com/gogpu/latte/mem"
	"github.com/gogpu/latte/surface"
	"github.com/gogpu/latte/tiling"
)

func main() {
	var (
		base    = flag.Uint("base", 0x1000, "guest base address")
		small   = flag.Uint("small", 128, "size of the first surface")
		large   = flag.Uint("large", 256, "size of the grown surface")
		output  = flag.String("output", "surface.tiff", "output file")
		verbose = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	latte.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("CreateInstance failed: %v", err)
	}
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		log.Fatal("no adapters")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("Open failed: %v", err)
	}
	defer openDev.Device.Destroy()

	pitch := uint32(*large)
	guest := mem.NewFlat(0, uint32(*base)+pitch*pitch*4)
	fillGradient(guest, uint32(*base), pitch)

	d, err := latte.New(openDev.Device, openDev.Queue, guest, nil)
	if err != nil {
		log.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("Close: %v", err)
		}
	}()

	req := surface.Request{
		BaseAddress: uint32(*base),
		Pitch:       pitch,
		Width:       uint32(*small),
		Height:      uint32(*small),
		Depth:       1,
		Dim:         surface.Dim2D,
		Format:      format.Descriptor{Format: format.Fmt8_8_8_8},
		TileMode:    tiling.LinearAligned,
	}
	if _, _, err := d.ResolveSurface(req); err != nil {
		log.Fatalf("resolve %dx%d: %v", req.Width, req.Height, err)
	}
	req.Width, req.Height = pitch, pitch
	buf, _, err := d.ResolveSurface(req)
	if err != nil {
		log.Fatalf("resolve %dx%d: %v", req.Width, req.Height, err)
	}
	if err := d.EndFrame(); err != nil {
		log.Fatalf("EndFrame failed: %v", err)
	}

	f, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	if err := d.DumpTIFF(f, buf); err != nil {
		f.Close()
		log.Fatalf("Failed to dump: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	s := d.Stats()
	latte.Logger().Info("done",
		"output", *output,
		"surfaces", s.Surface.Surfaces,
		"uploads", s.Surface.Uploads,
		"copies", s.Surface.Copies,
		"submissions", s.Submissions)
}

// fillGradient writes an RGBA8 gradient of size x size texels at base.
func fillGradient(m *mem.Flat, base, size uint32) {
	row := make([]byte, size*4)
	for y := range size {
		for x := range size {
			p := row[x*4:]
			p[0] = byte(x * 255 / size)
			p[1] = byte(y * 255 / size)
			p[2] = 0x80
			p[3] = 0xFF
		}
		m.Write(base+y*size*4, row)
	}
}
