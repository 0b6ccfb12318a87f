// This file composes client-facing replies and hidden course data blocks.
// Composed replies are deterministic; only plain turns go to the generator.
package advisor

import (
	"fmt"
	"strings"

	"github.com/Killzin1000/quality-eco/internal/storage"
)

// OfflineReply is returned when no generator is configured and no intercept
// can answer the turn.
const OfflineReply = "I'm temporarily unable to answer here. Please try again in a few minutes."

// ErrorReply is shown when a turn fails after the client message was
// already recorded.
const ErrorReply = "Sorry, something went wrong on my side. Could you repeat that?"

// ComposeGenerationFailure embeds the failure detail in the reply so a
// stuck conversation can be diagnosed from the chat log alone.
func ComposeGenerationFailure(err error) string {
	return fmt.Sprintf("Sorry, something went wrong while writing my reply. [internal log: %v]", err)
}

// joinReply prefixes the generator's visible text onto a composed reply.
func joinReply(visible, composed string) string {
	if visible == "" {
		return composed
	}
	if composed == "" {
		return visible
	}
	return visible + "\n\n" + composed
}

// CourseDataBlock renders the hidden fact block persisted to the history
// for a course. The generator answers later fact questions from this block.
func CourseDataBlock(c *storage.Course) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[COURSE_DATA: %s]\n", c.Name)

	writeFact(&sb, "Type", c.Type)
	writeFact(&sb, "Modality", c.Modality)
	writeFact(&sb, "Area", c.Area)
	writeFact(&sb, "Total hours", c.TotalHours)
	writeFact(&sb, "Duration", c.Duration)
	writeFact(&sb, "Prerequisite", c.Prerequisite)
	writeFact(&sb, "Thesis required", c.ThesisRequired)
	writeFact(&sb, "Internship required", c.InternshipRequired)
	writeFact(&sb, "Price (bank slip)", c.PriceBankSlip)
	writeFact(&sb, "Price (card)", c.PriceCard)
	writeFact(&sb, "Price (pix)", c.PricePix)
	writeFact(&sb, "Syllabus", c.SyllabusURL)
	writeFact(&sb, "Registry", c.RegistryURL)
	writeFact(&sb, "Campus", c.Campus)
	writeFact(&sb, "Notes", c.Notes)

	return strings.TrimRight(sb.String(), "\n")
}

func writeFact(sb *strings.Builder, label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, value)
}

// ComposeCourseReply builds the visible presentation of a single course.
// When summarized is true only the headline facts appear, for use after a
// menu selection where the client will ask follow-ups.
func ComposeCourseReply(c *storage.Course, summarized bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Great choice! Here's **%s**", c.Name)
	if c.Type != "" {
		fmt.Fprintf(&sb, " (%s)", c.Type)
	}
	sb.WriteString(":\n")

	if c.TotalHours != "" {
		fmt.Fprintf(&sb, "- Workload: %s\n", c.TotalHours)
	}
	if c.Duration != "" {
		fmt.Fprintf(&sb, "- Duration: %s\n", c.Duration)
	}
	if c.Modality != "" {
		fmt.Fprintf(&sb, "- Modality: %s\n", c.Modality)
	}

	if !summarized {
		if c.Prerequisite != "" {
			fmt.Fprintf(&sb, "- Prerequisite: %s\n", c.Prerequisite)
		}
		sb.WriteString("- " + requirementSentence("Thesis", c.ThesisRequired) + "\n")
		sb.WriteString("- " + requirementSentence("Internship", c.InternshipRequired) + "\n")
		if c.PriceBankSlip != "" {
			fmt.Fprintf(&sb, "- Price: %s (bank slip)", c.PriceBankSlip)
			if c.PricePix != "" {
				fmt.Fprintf(&sb, " or %s (pix)", c.PricePix)
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nWould you like to know anything else about this course, or shall I show you how to enroll?")
	return sb.String()
}

func requirementSentence(what, flag string) string {
	if flagIsYes(flag) {
		return what + ": required"
	}
	return what + ": not required"
}

func flagIsYes(flag string) bool {
	switch strings.ToLower(strings.TrimSpace(flag)) {
	case "yes", "y", "true", "1", "required":
		return true
	default:
		return false
	}
}

// ComposeSelectionReply builds the detailed presentation sent after a
// numbered menu pick: modality, duration, workload, the enrollment
// prerequisite folded with what is known about the client's own education,
// and the completion requirements.
func ComposeSelectionReply(c *storage.Course, priorEducation string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Perfect, you've picked **%s**. Here are the key details:\n", c.Name)
	if c.Modality != "" {
		fmt.Fprintf(&sb, "- Modality: %s\n", c.Modality)
	}
	if c.Duration != "" {
		fmt.Fprintf(&sb, "- Duration: %s\n", c.Duration)
	}
	if c.TotalHours != "" {
		fmt.Fprintf(&sb, "- Workload: %s\n", c.TotalHours)
	}
	if c.Prerequisite != "" {
		fmt.Fprintf(&sb, "- Prerequisite: %s", c.Prerequisite)
		if priorEducation != "" {
			fmt.Fprintf(&sb, ", and since you already hold %s you're covered", priorEducation)
		}
		sb.WriteString(".\n")
	}
	sb.WriteString("- " + requirementSentence("Thesis", c.ThesisRequired) + ". " +
		requirementSentence("Internship", c.InternshipRequired) + ".\n")

	sb.WriteString("\nDoes this match what you had in mind for the course?")
	return sb.String()
}

// ComposeDurationReply answers a workload or duration question from stored
// facts. Both the total hours and the duration text appear so either
// phrasing of the question is satisfied.
func ComposeDurationReply(c *storage.Course) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "The **%s** course", c.Name)
	switch {
	case c.TotalHours != "" && c.Duration != "":
		fmt.Fprintf(&sb, " has a total workload of %s, completed in %s.", c.TotalHours, c.Duration)
	case c.TotalHours != "":
		fmt.Fprintf(&sb, " has a total workload of %s.", c.TotalHours)
	case c.Duration != "":
		fmt.Fprintf(&sb, " takes %s to complete.", c.Duration)
	default:
		return fmt.Sprintf("I don't have the workload for **%s** on record. Would you like me to check another detail?", c.Name)
	}
	sb.WriteString(" Anything else you'd like to know?")
	return sb.String()
}

// ComposeThesisReply answers a thesis or internship question from stored
// facts, covering both requirements in one reply.
func ComposeThesisReply(c *storage.Course) string {
	thesis := "does not require a thesis or final paper"
	if flagIsYes(c.ThesisRequired) {
		thesis = "requires a thesis (final paper)"
	}
	internship := "no internship is required"
	if flagIsYes(c.InternshipRequired) {
		internship = "a supervised internship is required"
	}
	return fmt.Sprintf("The **%s** course %s, and %s. Anything else you'd like to know?", c.Name, thesis, internship)
}

// ComposeSyllabusReply answers a syllabus question, pointing at the stored
// syllabus document when one exists.
func ComposeSyllabusReply(c *storage.Course) string {
	if c.SyllabusURL == "" {
		return fmt.Sprintf("I don't have the syllabus for **%s** at hand right now, but I can check other details for you. What would you like to know?", c.Name)
	}
	return fmt.Sprintf("You can see the full syllabus for **%s** here: %s\nWould you like help with anything else?", c.Name, c.SyllabusURL)
}

// ComposeMenu builds the numbered options reply for multiple search
// results. Option numbers start at 1 and match what LastMenu later parses.
func ComposeMenu(courses []*storage.Course) string {
	var sb strings.Builder
	sb.WriteString("I found these options for you:\n")
	for i, c := range courses {
		fmt.Fprintf(&sb, "%d. %s", i+1, c.Name)
		if c.Type != "" {
			fmt.Fprintf(&sb, " (%s)", c.Type)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nJust reply with the number of the course you'd like to know more about.")
	return sb.String()
}

// ComposeNoResults builds the reply for a search that matched nothing.
func ComposeNoResults() string {
	return "I couldn't find a course matching that. Could you tell me a bit more about what you'd like to study? For example the area or the kind of program you're after."
}

// ComposeSelectionRetry asks the client to pick again after an
// out-of-range menu number.
func ComposeSelectionRetry(max int) string {
	return fmt.Sprintf("I don't have an option with that number. Please pick a number between 1 and %d from the list above.", max)
}
