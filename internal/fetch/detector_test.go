package fetch

import (
	"testing"

	"github.com/mizutanik/refurbwatch/internal/config"
)

func TestRenderDetector(t *testing.T) {
	t.Parallel()

	d := NewRenderDetector(config.RenderConfig{
		MinHTMLBytes: 10,
		Keywords:     []string{"lazy"},
		SelectorMust: []string{"#content"},
	})

	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "small body triggers", body: "hi", want: true},
		{name: "keyword triggers", body: "<html>lazy markup</html>", want: true},
		{name: "missing selector triggers", body: `<html><body><div id="other"></div></body></html>`, want: true},
		{name: "all conditions satisfied", body: `<div id="content">ok</div> and enough bytes`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := d.NeedsRender(Page{Body: []byte(tt.body)})
			if got != tt.want {
				t.Fatalf("expected %v got %v", tt.want, got)
			}
		})
	}
}

func TestRenderDetectorNilIsDisabled(t *testing.T) {
	t.Parallel()

	var d *RenderDetector
	if d.NeedsRender(Page{Body: []byte("x")}) {
		t.Fatal("nil detector must never request rendering")
	}
}
