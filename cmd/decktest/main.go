package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"deck-player/config"
	"deck-player/deck"
	"deck-player/debug"
	"deck-player/engine"
	"deck-player/midi"
	"deck-player/render"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	driver := config.DriverAuto
	if len(os.Args) > 2 {
		driver = config.DeckDriver(os.Args[2])
	}

	switch os.Args[1] {
	case "list":
		listDevices()
	case "format":
		withDevice(driver, showFormat)
	case "pattern":
		withDevice(driver, lightPattern)
	case "presses":
		withDevice(driver, printPresses)
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Deck Test Scripts")
	fmt.Println("")
	fmt.Println("Usage: decktest <command> [auto|streamdeck|launchpad|virtual]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List Stream Decks and MIDI ports")
	fmt.Println("  format   - Show key count and image format")
	fmt.Println("  pattern  - Paint every key with its number")
	fmt.Println("  presses  - Print key presses until Ctrl+C")
}

func listDevices() {
	fmt.Println("=== Stream Decks ===")
	decks, err := deck.ListStreamDecks()
	switch {
	case err != nil:
		fmt.Printf("  error: %v\n", err)
	case len(decks) == 0:
		fmt.Println("  (none)")
	}
	for i, d := range decks {
		fmt.Printf("  %d: %s\n", i, d)
	}

	fmt.Println("\n=== MIDI Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	ports, err := midi.Ports(ctx)
	if err != nil {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, p := range ports.Ins {
		marker := ""
		if midi.IsLaunchpad(p.String()) {
			marker = "  <- launchpad"
		}
		fmt.Printf("  in  %d: %s%s\n", i, p.String(), marker)
	}
	for i, p := range ports.Outs {
		fmt.Printf("  out %d: %s\n", i, p.String())
	}
}

// withDevice opens a device through a Surface-free path so raw driver
// behavior is visible.
func withDevice(driver config.DeckDriver, fn func(deck.Device)) {
	debug.EnableWriter(os.Stderr)
	cfg := config.DefaultConfig().Deck
	cfg.Driver = driver

	ctx, cancel := context.WithTimeout(context.Background(), cfg.OpenTimeout)
	defer cancel()

	dev, err := deck.NewOpener(cfg)(ctx)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	if err := dev.Open(); err != nil {
		fmt.Printf("Error opening %s: %v\n", dev.Name(), err)
		return
	}
	defer dev.Close()

	fmt.Printf("Using %s\n", dev.Name())
	fn(dev)
}

func showFormat(dev deck.Device) {
	f := dev.KeyImageFormat()
	fmt.Printf("  keys:     %d\n", dev.KeyCount())
	fmt.Printf("  size:     %dx%d\n", f.Size.X, f.Size.Y)
	fmt.Printf("  encoding: %s\n", f.Encoding)
	fmt.Printf("  flip:     x=%t y=%t\n", f.FlipX, f.FlipY)
	fmt.Printf("  rotation: %d\n", f.Rotation)
}

func lightPattern(dev deck.Device) {
	renderer := render.New(nil, render.DefaultStyle())
	format := dev.KeyImageFormat()

	for key := 0; key < dev.KeyCount(); key++ {
		v := render.View{Kind: render.SlotKey, Slot: key, Label: fmt.Sprintf("key %d", key), Highlighted: key%2 == 0}
		data, err := renderer.Render(v, format)
		if err != nil {
			fmt.Printf("render %d: %v\n", key, err)
			return
		}
		if err := dev.SetKeyImage(key, data); err != nil {
			fmt.Printf("write %d: %v\n", key, err)
			return
		}
	}

	clock := render.View{Kind: render.TimeKey, State: engine.Playing, Position: 83 * time.Second, Duration: 5 * time.Minute}
	if data, err := renderer.Render(clock, format); err == nil && dev.KeyCount() > 0 {
		dev.SetKeyImage(dev.KeyCount()-1, data)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
	dev.Reset()
	fmt.Println("Done!")
}

func printPresses(dev deck.Device) {
	fmt.Println("Press keys. Ctrl+C to exit.")
	dev.SetKeyCallback(func(index int, pressed bool) {
		state := "up"
		if pressed {
			state = "down"
		}
		fmt.Printf("[%s] key %d %s\n", time.Now().Format("15:04:05"), index, state)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := dev.Listen(ctx); err != nil && ctx.Err() == nil {
		fmt.Printf("Listen stopped: %v\n", err)
	}
}
