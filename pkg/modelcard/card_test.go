package modelcard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	content := Render("desired-model-name")
	if !strings.HasPrefix(content, "# desired-model-name\n") {
		t.Errorf("Render() does not start with the model name title")
	}
	for _, section := range []string{
		"## Description",
		"## Intended Use",
		"## Limitations",
		"## Hardware",
		"## Software Optimizations",
		"## Ethical Considerations",
		"## More Information",
	} {
		if !strings.Contains(content, section+"\n") {
			t.Errorf("Render() missing section %q", section)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()

	cardfile, err := Write(dir, "model-name", false)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, FileName); cardfile != want {
		t.Errorf("Write() = %v, want %v", cardfile, want)
	}

	// an existing card is kept unless forced
	if err := os.WriteFile(cardfile, []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Write(dir, "model-name", false); err != nil {
		t.Fatal(err)
	}
	content, err := os.ReadFile(cardfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "edited" {
		t.Errorf("Write() overwrote an existing card without force")
	}

	if _, err := Write(dir, "model-name", true); err != nil {
		t.Fatal(err)
	}
	content, err = os.ReadFile(cardfile)
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != Render("model-name") {
		t.Errorf("Write() with force did not rewrite the card")
	}
}
