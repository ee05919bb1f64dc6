package engine

import "testing"

func TestErrorCode_String(t *testing.T) {
	tests := []struct {
		want string
		code ErrorCode
	}{
		{"success", CodeSuccess},
		{"password required or incorrect", CodePassword},
		{"page not found or content error", CodePage},
		{"error code 42", ErrorCode(42)},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", uint32(tt.code), got, tt.want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	if CursorHand.String() != "hand" || Cursor(17).String() != "cursor(17)" {
		t.Error("unexpected cursor names")
	}
	if ZoomFitBV.String() != "fitbv" || ZoomUnknown.String() != "unknown" || ZoomMode(-1).String() != "zoom(-1)" {
		t.Error("unexpected zoom names")
	}
	if SaveNoIncremental.String() != "no-incremental" || SaveFlags(9).String() != "flags(9)" {
		t.Error("unexpected flag names")
	}
	if DocumentID(3).String() != "doc:3" || FormID(1).String() != "form:1" || PageID(2).String() != "page:2" {
		t.Error("unexpected id names")
	}
	if FieldCantCheckField.String() != "failed to set field checked" || FieldFailure(0).String() != "field failure(0)" {
		t.Error("unexpected field failure names")
	}
}

func TestFileWriterFunc(t *testing.T) {
	var got []byte
	var w FileWriter = FileWriterFunc(func(p []byte) error {
		got = append(got, p...)
		return nil
	})
	w.WriteBlock([]byte("ab"))
	w.WriteBlock([]byte("c"))
	if string(got) != "abc" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeWide(t *testing.T) {
	got, err := encodeWide("a€𝄞")
	if err != nil {
		t.Fatalf("encodeWide: %v", err)
	}
	want := []byte{'a', 0, 0xac, 0x20, 0x34, 0xd8, 0x1e, 0xdd, 0, 0}
	if string(got) != string(want) {
		t.Errorf("encodeWide = % x, want % x", got, want)
	}

	if got, _ := encodeWide(""); len(got) != 2 || got[0] != 0 || got[1] != 0 {
		t.Errorf("empty = % x", got)
	}
}
