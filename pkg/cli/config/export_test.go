package config

import "time"

func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

func NewStorageForTest(backend, bucket string) *Storage {
	return &Storage{backend: backend, bucket: bucket}
}

func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

func NewMemoForTest(backend, groqAPIKey string) *Memo {
	return &Memo{backend: backend, groqAPIKey: groqAPIKey}
}

func NewSearchForTest(apiKey, engineID string) *Search {
	return &Search{apiKey: apiKey, engineID: engineID}
}

func NewCredentialForTest(accessToken string, interval time.Duration) *Credential {
	return &Credential{accessToken: accessToken, refreshInterval: interval}
}

func NewPromptForTest(path string) *Prompt {
	return &Prompt{path: path}
}
