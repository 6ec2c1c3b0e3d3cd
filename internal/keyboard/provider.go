// Package keyboard infers the soft keyboard height and the screen orientation
// from layout passes of the overlay.
//
// The platform does not report keyboard height directly. The provider keeps
// the largest visible-frame bottom seen for each orientation; the keyboard
// covers whatever lies between that maximum and the current bottom.
package keyboard

import (
	"image"

	"mobileinput/internal/logging"
	"mobileinput/internal/native"
)

// HeightObserver is told about keyboard height changes.
type HeightObserver interface {
	OnKeyboardHeight(screenHeight, height int, orientation native.Orientation)
}

// OrientationObserver is told about orientation changes.
type OrientationObserver interface {
	OnOrientation(orientation native.Orientation)
}

// State is a snapshot of the provider's tracking state.
type State struct {
	MaxPortrait     int
	MaxLandscape    int
	LastHeight      int
	LastOrientation native.Orientation
	NavBarHeight    int
}

// Provider turns layout passes into keyboard and orientation notifications.
// It runs on the UI thread.
type Provider struct {
	state       State
	height      HeightObserver
	orientation OrientationObserver
	stop        func()
	disabled    bool
	log         *logging.Logger
}

// NewProvider returns a provider that starts from the given orientation.
// Either observer may be nil.
func NewProvider(initial native.Orientation, navBarHeight int, h HeightObserver, o OrientationObserver, log *logging.Logger) *Provider {
	if log == nil {
		log = logging.Discard()
	}
	return &Provider{
		state: State{
			LastOrientation: initial,
			NavBarHeight:    navBarHeight,
		},
		height:      h,
		orientation: o,
		log:         log.WithComponent("keyboard"),
	}
}

// Install creates a provider for host and subscribes it to layout passes.
func Install(host native.Host, navBarHeight int, h HeightObserver, o OrientationObserver, log *logging.Logger) *Provider {
	p := NewProvider(host.Orientation(), navBarHeight, h, o, log)
	p.stop = host.WatchLayout(p.OnLayout)
	p.log.Debug("keyboard provider installed", "orientation", host.Orientation(), "nav_bar_height", navBarHeight)
	return p
}

// OnLayout handles one layout pass with the visible display frame.
func (p *Provider) OnLayout(frame image.Rectangle, o native.Orientation) {
	if p.disabled {
		return
	}
	bottom := frame.Max.Y

	var screen, height int
	switch o {
	case native.OrientationPortrait:
		p.state.MaxPortrait = max(p.state.MaxPortrait, bottom)
		screen = p.state.MaxPortrait
		height = screen - bottom
	case native.OrientationLandscape:
		p.state.MaxLandscape = max(p.state.MaxLandscape, bottom)
		screen = p.state.MaxLandscape
		height = screen - bottom
	default:
		screen = p.state.MaxLandscape
	}
	if height > 0 {
		height += p.state.NavBarHeight
	}

	if height != p.state.LastHeight {
		p.state.LastHeight = height
		p.log.Debug("keyboard height changed", "height", height, "screen", screen, "orientation", o)
		if p.height != nil {
			p.height.OnKeyboardHeight(screen, height, o)
		}
	}
	if o != p.state.LastOrientation {
		p.state.LastOrientation = o
		p.log.Debug("orientation changed", "orientation", o)
		if p.orientation != nil {
			p.orientation.OnOrientation(o)
		}
	}
}

// State returns the current tracking state.
func (p *Provider) State() State { return p.state }

// Disable stops layout delivery. Later layout passes are ignored.
func (p *Provider) Disable() {
	if p.disabled {
		return
	}
	p.disabled = true
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
}

// NavBarHeight resolves the navigation bar inset. A negative configured value
// asks the host.
func NavBarHeight(host native.Host, configured int) int {
	if configured >= 0 {
		return configured
	}
	if ni, ok := host.(native.NavigationInfo); ok {
		return max(ni.NavigationBarHeight(), 0)
	}
	return 0
}
