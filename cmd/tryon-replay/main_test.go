package main

import (
	"strings"
	"testing"
)

func TestLoadRecording(t *testing.T) {
	input := `{"type":"landmarks","ts":1,"data":{"detected":true,"scheme":"yunet5","points":[{"x":1,"y":2}],"width":640,"height":480}}

{"detected":false,"width":640,"height":480}
{"type":"ping","data":{"id":"x","ts":1}}
`
	frames, err := loadRecording(strings.NewReader(input))
	if err != nil {
		t.Fatalf("loadRecording() error = %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if !frames[0].Detected || frames[0].Scheme != "yunet5" || len(frames[0].Points) != 1 {
		t.Errorf("frame 0 = %+v", frames[0])
	}
	if frames[1].Detected || frames[1].Width != 640 {
		t.Errorf("frame 1 = %+v", frames[1])
	}
}

func TestLoadRecording_BadLine(t *testing.T) {
	_, err := loadRecording(strings.NewReader("{\"detected\":true}\nnot json\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, want line 2", err)
	}
}
