package model

const (
	ModelConfigFileName = "mhub.yaml"

	// fixed commit message for the model card upload
	PublishCommitMessage = "add model and model card"
)
