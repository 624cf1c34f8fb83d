package services

import (
	"fmt"
	"strings"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildEvaluationPrompt creates the prompt for evaluating a resume against a
// job description. The evaluator is instructed to echo skill names exactly as
// given; the orchestrator still canonicalizes the answer afterwards.
func (pb *PromptBuilder) BuildEvaluationPrompt(jdText string, required, niceToHave []string, resumeText string) string {
	return fmt.Sprintf(`You are a professional recruiting assistant. Your task is to evaluate how well a candidate's skills match a job's requirements.

JOB DESCRIPTION:
---
%s
---

REQUIRED SKILLS (IMPORTANT: Use EXACTLY these skill names in your response):
%s

NICE TO HAVE SKILLS (IMPORTANT: Use EXACTLY these skill names in your response):
%s

RESUME:
---
%s
---

INSTRUCTIONS:

1. For each skill in the REQUIRED SKILLS list, determine if the candidate possesses it based on their resume.
2. Return the exact skill names (matching the spelling and capitalization provided above) that the candidate has.
3. Also return the exact skill names the candidate is missing.
4. Provide a 2-sentence rationale explaining how well the candidate matches the job.

IMPORTANT: ONLY use the EXACT skill names provided in the lists above. DO NOT reword, rephrase, or create your own skill names.
Look for direct mentions, synonyms, or evidence of experience with those exact skills in the resume.

Return your response in the following JSON format:
{
  "matched_skills": ["<skill>", ...],
  "missing_skills": ["<skill>", ...],
  "rationale": "<2-sentence explanation>"
}`,
		jdText,
		strings.Join(required, ", "),
		strings.Join(niceToHave, ", "),
		resumeText)
}

// BuildSkillExtractionPrompt creates the prompt for splitting a job
// description into required and nice-to-have skill lists.
func (pb *PromptBuilder) BuildSkillExtractionPrompt(jdText string) string {
	return fmt.Sprintf(`Analyze the job description and extract skills into 'required_skills' and 'nice_to_have_skills'.

Job Description:
---
%s
---

Return your response in the following JSON format:
{
  "required_skills": ["<skill>", ...],
  "nice_to_have_skills": ["<skill>", ...]
}`, jdText)
}

// BuildResumeParsePrompt creates the prompt for structuring raw resume text.
func (pb *PromptBuilder) BuildResumeParsePrompt(resumeText string) string {
	return fmt.Sprintf(`Parse the following resume text into a valid JSON object. Be thorough in extracting all skills.

Resume Text:
---
%s
---

Return your response in the following JSON format:
{
  "name": "<candidate name>",
  "email": "<email>",
  "phone": "<phone>",
  "skills": ["<skill>", ...],
  "experience": [{"title": "<title>", "company": "<company>", "duration": "<duration>"}, ...]
}`, resumeText)
}
