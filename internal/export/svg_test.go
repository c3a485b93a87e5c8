package export

import (
	"strings"
	"testing"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/san-kum/physim/internal/viz"
)

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 1) != "" {
		t.Error("nil canvas should render nothing")
	}
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	out := CanvasToSVG(c, 2)
	if n := strings.Count(out, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	if !strings.Contains(out, `width="8" height="8"`) {
		t.Errorf("unexpected size:\n%s", out)
	}
}

func TestSideViewSVG(t *testing.T) {
	if SideViewSVG(nil, 100, 100, "#fff") != "" {
		t.Error("no boxes should render nothing")
	}
	boxes := []cube.BBox{
		cube.Box(-1, 0, -1, 1, 2, 1),
		cube.Box(-1, 2, -1, 1, 4, 1),
	}
	out := SideViewSVG(boxes, 200, 100, "#00ccff")
	if n := strings.Count(out, "<rect x="); n != 2 {
		t.Errorf("expected 2 boxes, got %d", n)
	}
	if !strings.Contains(out, `stroke="#00ccff"`) || !strings.Contains(out, "<line") {
		t.Errorf("missing stroke or ground line:\n%s", out)
	}
	if !strings.HasSuffix(out, "</svg>") {
		t.Error("unterminated svg")
	}
}
