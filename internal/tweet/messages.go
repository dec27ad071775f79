package tweet

const (
	msgAnonymous     = "anonymous"
	msgFileTooLarge  = "file_too_large"
	msgNotImage      = "not_image"
	msgEmptyText     = "empty_text"
	msgTextTooLong   = "text_too_long"
	msgBusy          = "busy"
	msgUnauthorized  = "unauthorized"
	msgSubmitFailed  = "submit_failed"
	msgPosted        = "posted"
	msgNotFound      = "not_found"
	msgBadAttachment = "bad_attachment"
	msgListFailed    = "list_failed"
)

const defaultLanguage = "ko"

var messages = map[string]map[string]string{
	"ko": {
		msgAnonymous:     "익명",
		msgFileTooLarge:  "1MB 이하의 파일만 업로드 가능합니다.",
		msgNotImage:      "이미지 파일만 업로드 가능합니다.",
		msgEmptyText:     "내용을 입력해 주세요.",
		msgTextTooLong:   "180자 이하로 작성해 주세요.",
		msgBusy:          "업로드 중입니다.",
		msgUnauthorized:  "로그인이 필요합니다.",
		msgSubmitFailed:  "글을 올리지 못했습니다.",
		msgPosted:        "글이 올라갔습니다.",
		msgNotFound:      "글을 찾을 수 없습니다.",
		msgBadAttachment: "파일을 읽을 수 없습니다.",
		msgListFailed:    "글 목록을 불러오지 못했습니다.",
	},
	"en": {
		msgAnonymous:     "Anonymous",
		msgFileTooLarge:  "Only files up to 1MB can be uploaded.",
		msgNotImage:      "Only image files can be uploaded.",
		msgEmptyText:     "Write something first.",
		msgTextTooLong:   "Tweets are limited to 180 characters.",
		msgBusy:          "Upload in progress.",
		msgUnauthorized:  "You need to sign in.",
		msgSubmitFailed:  "Your tweet could not be posted.",
		msgPosted:        "Tweet posted.",
		msgNotFound:      "Tweet not found.",
		msgBadAttachment: "The file could not be read.",
		msgListFailed:    "Could not load tweets.",
	},
}

// Message returns the text for key in lang, falling back to Korean.
func Message(lang, key string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	return messages[defaultLanguage][key]
}

// AnonymousName is the display name given to actors without one.
func AnonymousName(lang string) string {
	return Message(lang, msgAnonymous)
}
