package summarizer

import (
	"fmt"
	"strings"
)

// SectionBreak separates chunk summaries in the synthesis prompt.
const SectionBreak = "\n\n---SECTION BREAK---\n\n"

const chunkSystemPrompt = `You are an expert academic researcher. Create comprehensive, well-structured summaries of research papers that help readers understand key concepts, methodology, findings, and implications.`

const chunkUserTemplate = `Please provide a comprehensive summary of this document text. Structure your summary with the following sections:

**TITLE & AUTHORS**: Extract the title and authors if available
**ABSTRACT/OVERVIEW**: Main purpose and scope of the research
**RESEARCH OBJECTIVES**: Key questions or hypotheses being investigated
**METHODOLOGY**: Research methods, data collection, and analysis approaches
**KEY FINDINGS**: Main results and discoveries
**CONCLUSIONS**: Primary conclusions and their significance
**IMPLICATIONS**: Broader impact and future research directions
**LIMITATIONS**: Any noted limitations or areas for improvement

Text to summarize:
%s`

const synthesisSystemPrompt = `You are an expert academic researcher. Your task is to synthesize multiple section summaries into one comprehensive, coherent final summary.`

const synthesisUserTemplate = `Please create a comprehensive final summary by synthesizing these section summaries from a document. Eliminate redundancy and create a flowing, coherent summary with the following structure:

**TITLE & AUTHORS**: Consolidated title and author information
**ABSTRACT/OVERVIEW**: Unified overview of the research
**RESEARCH OBJECTIVES**: Combined research questions and hypotheses
**METHODOLOGY**: Comprehensive methodology description
**KEY FINDINGS**: All important results and discoveries
**CONCLUSIONS**: Unified conclusions and their significance
**IMPLICATIONS**: Overall impact and future directions
**LIMITATIONS**: All noted limitations

Section summaries to synthesize:
%s`

func chunkPrompt(text string) Prompt {
	return Prompt{
		System: chunkSystemPrompt,
		User:   fmt.Sprintf(chunkUserTemplate, text),
	}
}

func synthesisPrompt(summaries []string) Prompt {
	return Prompt{
		System: synthesisSystemPrompt,
		User:   fmt.Sprintf(synthesisUserTemplate, strings.Join(summaries, SectionBreak)),
	}
}
