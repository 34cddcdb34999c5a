package model

// QuizItem is one generated question. The generator script writes the kind
// under the "type" key.
type QuizItem struct {
	Kind     string `json:"type"`
	Question string `json:"question"`
}

type UploadResponse struct {
	FileID   *string `json:"fileId"`
	FileName *string `json:"fileName"`
	Message  string  `json:"message"`
}

func NewUploadResponse(fileID, fileName, message string) UploadResponse {
	r := UploadResponse{Message: message}
	if fileID != "" {
		r.FileID = &fileID
	}
	if fileName != "" {
		r.FileName = &fileName
	}
	return r
}

const (
	MsgQuizGenerated = "File uploaded & quiz generated successfully"
	MsgNoQuiz        = "File uploaded (no quiz for non-PDF)"
	MsgUploadFailed  = "Error uploading file or generating quiz"

	MsgFileRequired  = "File is required"
	MsgFileEmpty     = "File is empty"
	MsgNoExtension   = "File must have an extension"
	MsgExtNotAllowed = "Only .pdf, .docx, .txt and .md files are allowed"
	MsgFileTooLarge  = "File is too large. Maximum size is 20 MB"
)
