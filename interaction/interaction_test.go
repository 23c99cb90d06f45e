package interaction_test

import (
	"sync"
	"testing"

	"github.com/spezifisch/tunebar/display"
	"github.com/spezifisch/tunebar/display/displaytest"
	"github.com/spezifisch/tunebar/interaction"
	"github.com/spezifisch/tunebar/logger"
	"github.com/spezifisch/tunebar/player"
	"github.com/spezifisch/tunebar/player/playertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	prim       *playertest.Primitive
	controller *player.Controller
	transport  *displaytest.TransportSurface
	seekBar    *interaction.SeekBar
	volume     *interaction.VolumeSlider
}

func newRig(duration float64) *rig {
	l := logger.Init()
	r := &rig{
		prim:      playertest.New(),
		transport: &displaytest.TransportSurface{},
	}
	r.controller = player.NewController(r.prim, 1, l)
	b := display.NewBroadcaster(r.controller)
	b.AddTransportSurface(r.transport)
	r.controller.Subscribe(func(e player.Event) {
		if p, ok := e.Data.(player.Progress); ok && e.Type == player.EventTimeUpdate {
			b.RenderProgress(p.Position, p.Duration)
		}
	})
	r.seekBar = interaction.NewSeekBar(r.controller, b, l)
	r.volume = interaction.NewVolumeSlider(r.controller, b, l)
	if duration > 0 {
		r.prim.LoadMetadata(duration)
	}
	return r
}

func TestFraction(t *testing.T) {
	tests := []struct {
		x, left, width int
		want           float64
		ok             bool
	}{
		{x: 5, left: 0, width: 10, want: 0.5, ok: true},
		{x: 12, left: 2, width: 10, want: 1, ok: true},
		{x: 20, left: 2, width: 10, want: 1, ok: true},
		{x: 0, left: 2, width: 10, want: 0, ok: true},
		{x: 5, left: 0, width: 0, want: 0, ok: false},
	}
	for _, tt := range tests {
		got, ok := interaction.Fraction(tt.x, tt.left, tt.width)
		assert.Equal(t, tt.ok, ok)
		assert.InDelta(t, tt.want, got, 1e-9)
	}
}

func TestSeekBarClick(t *testing.T) {
	r := newRig(100)

	r.seekBar.Click(25, 0, 100)

	assert.Equal(t, []float64{25}, r.prim.Snapshot().Seeks)
	p, ok := r.transport.LastProgress()
	require.True(t, ok)
	assert.Equal(t, displaytest.Progress{Percent: 25, Label: "0:25"}, p)
}

func TestSeekBarClickZeroWidth(t *testing.T) {
	r := newRig(100)
	r.seekBar.Click(25, 0, 0)
	assert.Empty(t, r.prim.Snapshot().Seeks)
	assert.Zero(t, r.transport.ProgressCount())
}

func TestSeekBarClickUnknownDuration(t *testing.T) {
	r := newRig(0)
	r.seekBar.Click(25, 0, 100)
	assert.Empty(t, r.prim.Snapshot().Seeks)
	assert.Zero(t, r.transport.ProgressCount())
}

func TestSeekBarDrag(t *testing.T) {
	r := newRig(100)

	r.seekBar.Press(10, 0, 100)
	assert.True(t, r.controller.IsSeeking())
	assert.True(t, r.seekBar.Dragging())

	// time updates during the drag must not move the bar
	r.prim.Tick(80)
	p, _ := r.transport.LastProgress()
	assert.Equal(t, 10.0, p.Percent)

	r.seekBar.Move(40, 0, 100)
	r.seekBar.Move(60, 0, 100)
	p, _ = r.transport.LastProgress()
	assert.Equal(t, displaytest.Progress{Percent: 60, Label: "1:00"}, p)
	assert.Empty(t, r.prim.Snapshot().Seeks, "no seek before release")

	r.seekBar.Release(70, 0, 100)
	assert.False(t, r.controller.IsSeeking())
	assert.False(t, r.seekBar.Dragging())
	assert.Equal(t, []float64{70}, r.prim.Snapshot().Seeks)
}

func TestSeekBarReleaseWithoutPress(t *testing.T) {
	r := newRig(100)
	r.seekBar.Release(70, 0, 100)
	r.seekBar.Move(70, 0, 100)
	assert.Empty(t, r.prim.Snapshot().Seeks)
	assert.Zero(t, r.transport.ProgressCount())
}

func TestVolumeSliderDragClamps(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
		muted bool
	}{
		{value: 0.3, want: 30},
		{value: -1, want: 0, muted: true},
		{value: 1.5, want: 100},
	}
	for _, tt := range tests {
		r := newRig(0)
		r.volume.Drag(tt.value)
		assert.InDelta(t, tt.want, r.transport.Volume, 1e-9)
		assert.Equal(t, tt.muted, r.transport.Muted)
		assert.InDelta(t, tt.want/100, r.prim.Snapshot().Vol, 1e-9)
	}
}

func TestVolumeSliderDragAtAndNudge(t *testing.T) {
	r := newRig(0)
	r.volume.DragAt(3, 1, 4)
	assert.InDelta(t, 0.5, r.controller.Volume(), 1e-9)

	r.volume.Nudge(0.25)
	assert.InDelta(t, 0.75, r.controller.Volume(), 1e-9)

	r.volume.Nudge(1)
	assert.Equal(t, 1.0, r.controller.Volume())
}

func TestVolumeSliderToggleMute(t *testing.T) {
	r := newRig(0)
	r.volume.Drag(0.6)

	r.volume.ToggleMute()
	assert.True(t, r.transport.Muted)
	assert.True(t, r.controller.Muted())

	r.volume.ToggleMute()
	assert.False(t, r.transport.Muted)
	assert.InDelta(t, 0.6, r.controller.Volume(), 1e-9)
}

type querier struct {
	mu      sync.Mutex
	queries []string
}

func (q *querier) Query(text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queries = append(q.queries, text)
}

type affordance struct {
	highlighted bool
	hidden      int
}

func (a *affordance) SetHighlighted(highlighted bool) { a.highlighted = highlighted }
func (a *affordance) HideResults()                    { a.hidden++ }

func TestSearchBox(t *testing.T) {
	q := &querier{}
	a := &affordance{}
	box := interaction.NewSearchBox(q, a)

	box.Focus()
	assert.True(t, a.highlighted)

	box.Input("abc")
	assert.Equal(t, []string{"abc"}, q.queries)

	box.OutsideClick(true)
	assert.True(t, a.highlighted)
	assert.Zero(t, a.hidden)

	box.OutsideClick(false)
	assert.False(t, a.highlighted)
	assert.Equal(t, 1, a.hidden)

	box.Focus()
	box.Blur()
	assert.False(t, a.highlighted)
}

func TestSearchBoxWithoutAffordance(t *testing.T) {
	q := &querier{}
	box := interaction.NewSearchBox(q, nil)
	assert.NotPanics(t, func() {
		box.Focus()
		box.Blur()
		box.OutsideClick(false)
	})
}
