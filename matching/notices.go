package matching

import (
	"errors"

	"vibin_discover/models"
)

var (
	noticeLoadFailed = models.Notice{
		Title:       "Error loading matches",
		Description: "Please try again later.",
		Variant:     models.NoticeDestructive,
	}
	noticeSwipeFailed = models.Notice{
		Title:       "Error processing swipe",
		Description: "Please try again.",
		Variant:     models.NoticeDestructive,
	}
	noticeUndoFailed = models.Notice{
		Title:       "Error undoing action",
		Description: "Please try again.",
		Variant:     models.NoticeDestructive,
	}
	noticeLikeSent = models.Notice{
		Title:       "Like sent!",
		Description: "We'll let you know if they like you back.",
		Variant:     models.NoticeDefault,
	}
	noticeMatched = models.Notice{
		Title:       "It's a match!",
		Description: "You both liked each other. Say hi!",
		Variant:     models.NoticeDefault,
	}
	noticeUndone = models.Notice{
		Title:       "Undone",
		Description: "Your last action has been undone.",
		Variant:     models.NoticeDefault,
	}
)

// NoticeFor maps a session error to the notice shown for it. Unknown errors
// get the generic load failure copy.
func NoticeFor(err error) models.Notice {
	var we *WriteError
	if errors.As(err, &we) {
		if we.Op == opDelete {
			return noticeUndoFailed
		}
		return noticeSwipeFailed
	}
	return noticeLoadFailed
}
