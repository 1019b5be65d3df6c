package services

import (
	"fmt"
	"strings"
)

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// questionsPrompt asks the model for a fixed-size numbered question list
// tailored to the space and round.
func questionsPrompt(jobPosition, companyName, jobDescription, resumeSummary, roundName string) string {
	return fmt.Sprintf(`Based on the following details:
- Job Role: %s
- Company: %s
- Job Description: %s
- Resume Summary: %s
- Interview Round: %s

Generate exactly 15 high-quality personalized interview questions for this round. The questions should be appropriate for the specific round type and challenging but fair. Structure the questions as follows:
1. Start with 3 warm-up questions.
2. Include 10 role-specific and challenging questions related to the candidate's background.
3. End with 2 reflective or open-ended questions.

Format the response as a numbered list:
1. [Question 1]
2. [Question 2]
...
15. [Question 15]`,
		jobPosition, companyName, truncate(jobDescription, 1000), truncate(resumeSummary, 1000), roundName)
}

// summaryPrompt asks the model for the round evaluation.
func summaryPrompt(roundName, companyName, jobPosition string, questions, answers []string) string {
	var qa strings.Builder
	for i := range questions {
		fmt.Fprintf(&qa, "Q: %s\nA: %s\n\n", questions[i], answers[i])
	}

	return fmt.Sprintf(`Summarize the following interview for a %s round at %s for a %s position:

%s
Provide a comprehensive evaluation of the candidate's performance, including:
1. Overall impression
2. Key strengths demonstrated
3. Areas for improvement
4. Specific examples from their answers to support your assessment
5. Actionable advice for future interviews

Ensure the summary is balanced, constructive, and helpful for the candidate's growth.`,
		roundName, companyName, jobPosition, qa.String())
}

// purifyPrompt asks the model to condense resume text, tailored to the job
// description when one of substance was provided.
func purifyPrompt(resumeText, jobDescription string) string {
	if strings.TrimSpace(jobDescription) != "" {
		return fmt.Sprintf(`You're an AI assistant helping to summarize resume content for a job application.

Resume text:
"""
%s
"""

Job description:
"""
%s
"""

Your task: Analyze this resume and identify the most relevant skills, experiences, and qualifications that match this job description. Create a concise, professional summary highlighting the candidate's strengths for this specific role. Format your response as a well-structured paragraph. Do not include phrases like "Based on the resume" or "According to the job description" - just provide the direct summary.`,
			truncate(resumeText, 3000), truncate(jobDescription, 1000))
	}

	return fmt.Sprintf(`You're an AI assistant helping to summarize resume content.

Resume text:
"""
%s
"""

Your task: Analyze this resume and create a concise, professional summary highlighting the candidate's key skills, experiences, and qualifications. Format your response as a well-structured paragraph focusing on their strengths and achievements. Do not include phrases like "Based on the resume" - just provide the direct summary.`,
		truncate(resumeText, 3000))
}
