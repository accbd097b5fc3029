package provider

import (
	"fmt"
	"strings"

	"github.com/pixenhq/pixen/internal/config"
)

// System instructions for the two generation modes. Edit mode is selected
// by the presence of at least one input image.
const (
	EditSystemInstruction = "You are an expert photo editor. Apply the requested edit to the " +
		"provided image while strictly preserving the subject's identity, facial features, " +
		"pose, and overall composition. Always return the edited image."

	GenerateSystemInstruction = "You are an expert image generator. Create a single " +
		"high-quality image that matches the user's description. Always return the image."

	// EnhanceInstruction is the fixed rewrite instruction for prompt
	// enhancement.
	EnhanceInstruction = "Rewrite the following image prompt to be more descriptive but " +
		"concise. Reply with only the rewritten prompt, nothing else."
)

// SystemInstruction returns the instruction for the request's mode.
func SystemInstruction(req GenerateRequest) string {
	if req.EditMode() {
		return EditSystemInstruction
	}
	return GenerateSystemInstruction
}

// AugmentPrompt appends the optional style and framing instructions to the
// user prompt, in fixed order:
//  1. style edit instruction (style set, images present): change art style
//     while preserving identity
//  2. style generate instruction (style set, no images)
//  3. full-body framing hint
func AugmentPrompt(prompt string, settings config.GenSettings, editMode bool) string {
	var sb strings.Builder
	sb.WriteString(prompt)

	if settings.Style != "" && settings.Style != config.StyleNone {
		if editMode {
			fmt.Fprintf(&sb, " Change the art style to %s. Strictly preserve the subject's "+
				"facial features, identity, pose, and structure; apply only the aesthetic "+
				"texture, color, and lighting of the %s style.", settings.Style, settings.Style)
		} else {
			fmt.Fprintf(&sb, " Create the image in the %s style.", settings.Style)
		}
	}

	if settings.IsFullBody {
		sb.WriteString(" Keep the subject's full body visible in frame, head to toe, uncropped.")
	}

	return sb.String()
}
