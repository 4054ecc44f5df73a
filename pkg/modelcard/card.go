// Package modelcard renders the model card document published alongside a
// model: a fixed markdown template whose bracketed fields the author fills in
// before or after publishing.
package modelcard

import (
	"fmt"
	"os"
	"path/filepath"
)

const FileName = "README.md"

const template = `# %s

## Description

[Add a one-paragraph description of the model: its architecture, the task it
was fine-tuned for, and the data it was trained on.]

## Intended Use

[Describe the primary intended uses and users, and any uses that are out of
scope.]

## Limitations

[Describe known limitations: domains, languages, input lengths, failure
modes.]

## Hardware

[List the hardware the model was trained on.]

## Software Optimizations

[List any software optimizations applied during training or inference.]

## Ethical Considerations

[Discuss potential sources of bias in the training data and possible misuse.]

## More Information

[Link to papers, source datasets, or contact details.]
`

func Render(name string) string {
	return fmt.Sprintf(template, name)
}

// Write renders the card for name into dir/README.md. An existing card is
// left untouched unless force is set.
func Write(dir string, name string, force bool) (string, error) {
	cardfile := filepath.Join(dir, FileName)
	if !force {
		if _, err := os.Stat(cardfile); err == nil {
			return cardfile, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
	}
	if err := os.WriteFile(cardfile, []byte(Render(name)), 0o644); err != nil {
		return "", fmt.Errorf("write model card %s: %w", cardfile, err)
	}
	return cardfile, nil
}
