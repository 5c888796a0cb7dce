package classifier

import "strings"

type segmentKind int

const (
	segParagraph segmentKind = iota
	segCode
)

// segment is a candidate span: a fenced code block or a blank-line
// delimited paragraph, with enough position info to build spans.
type segment struct {
	kind    segmentKind
	text    string
	start   int    // byte offset of first line
	line    int    // 1-based line number of first line
	lang    string // fence language
	context string // nearest preceding non-blank prose line, lowercased
}

// segmentPage splits page text into code and paragraph segments. Fence
// markers themselves are not part of the segment text.
func segmentPage(text string) []segment {
	var segs []segment
	lines := strings.Split(text, "\n")

	offset := 0
	lastProse := ""

	var para []string
	paraStart, paraLine := 0, 0

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		segs = append(segs, segment{
			kind:    segParagraph,
			text:    strings.Join(para, "\n"),
			start:   paraStart,
			line:    paraLine,
			context: lastProse,
		})
		lastProse = strings.ToLower(strings.TrimSpace(para[len(para)-1]))
		para = nil
	}

	inFence := false
	var fence []string
	fenceStart, fenceLine := 0, 0
	fenceLang := ""
	fenceContext := ""

	for i, raw := range lines {
		lineNo := i + 1
		trimmed := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(trimmed, "```"):
			if inFence {
				segs = append(segs, segment{
					kind:    segCode,
					text:    strings.Join(fence, "\n"),
					start:   fenceStart,
					line:    fenceLine,
					lang:    fenceLang,
					context: fenceContext,
				})
				inFence = false
				fence = nil
			} else {
				flushPara()
				inFence = true
				fenceLang = strings.ToLower(strings.TrimPrefix(trimmed, "```"))
				fenceStart = offset + len(raw) + 1
				fenceLine = lineNo + 1
				fenceContext = lastProse
			}
		case inFence:
			fence = append(fence, raw)
		case trimmed == "":
			flushPara()
		default:
			if len(para) == 0 {
				paraStart = offset
				paraLine = lineNo
			}
			para = append(para, raw)
		}

		offset += len(raw) + 1
	}

	// Unterminated fence: treat the remainder as code anyway. A trailing
	// newline in the input leaves an empty split element; drop it so the
	// segment text matches what a closed fence would carry.
	for len(fence) > 0 && fence[len(fence)-1] == "" {
		fence = fence[:len(fence)-1]
	}
	if inFence && len(fence) > 0 {
		segs = append(segs, segment{
			kind: segCode, text: strings.Join(fence, "\n"),
			start: fenceStart, line: fenceLine, lang: fenceLang, context: fenceContext,
		})
	}
	flushPara()

	return segs
}
