// Package input turns SDL2 events into camera movement and viewer actions.
package input

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/greed/internal/engine/camera"
)

// EventType classifies discrete events the viewer reacts to.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventClick
)

// Event is a processed discrete event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
}

// Input tracks held keys and accumulates mouse motion between frames.
type Input struct {
	events []Event
	held   map[sdl.Scancode]bool

	looking      bool // right button held
	lookX, lookY float32
	wheel        float32
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events: make([]Event, 0, 16),
		held:   make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events. It returns true when the viewer should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]
	i.lookX, i.lookY, i.wheel = 0, 0, 0

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch e := event.(type) {
		case *sdl.QuitEvent:
			i.events = append(i.events, Event{Type: EventQuit})
			return true

		case *sdl.WindowEvent:
			if e.Event == sdl.WINDOWEVENT_RESIZED {
				i.events = append(i.events, Event{Type: EventWindowResize, Width: int(e.Data1), Height: int(e.Data2)})
			}

		case *sdl.KeyboardEvent:
			code := e.Keysym.Scancode
			if e.Type == sdl.KEYDOWN {
				if e.Repeat == 0 {
					i.events = append(i.events, Event{Type: EventKeyDown, Key: code})
				}
				i.held[code] = true
			} else {
				delete(i.held, code)
			}

		case *sdl.MouseMotionEvent:
			if i.looking {
				i.lookX += float32(e.XRel)
				i.lookY += float32(e.YRel)
			}

		case *sdl.MouseButtonEvent:
			down := e.Type == sdl.MOUSEBUTTONDOWN
			switch e.Button {
			case sdl.BUTTON_RIGHT:
				i.looking = down
			case sdl.BUTTON_LEFT:
				if down {
					i.events = append(i.events, Event{Type: EventClick, MouseX: int(e.X), MouseY: int(e.Y)})
				}
			}

		case *sdl.MouseWheelEvent:
			i.wheel += float32(e.Y)
		}
	}
	return false
}

// Events returns the discrete events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// Movement returns the camera input of the last Update: WASD moves, Space
// and Left Ctrl rise and sink, right-drag looks, the wheel zooms.
func (i *Input) Movement() camera.Movement {
	return camera.Movement{
		Forward: i.axis(sdl.SCANCODE_W, sdl.SCANCODE_S),
		Right:   i.axis(sdl.SCANCODE_D, sdl.SCANCODE_A),
		Up:      i.axis(sdl.SCANCODE_SPACE, sdl.SCANCODE_LCTRL),
		Yaw:     i.lookX,
		Pitch:   i.lookY,
		Zoom:    i.wheel,
	}
}

func (i *Input) axis(positive, negative sdl.Scancode) float32 {
	var v float32
	if i.held[positive] {
		v++
	}
	if i.held[negative] {
		v--
	}
	return v
}
