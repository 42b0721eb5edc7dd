package classifier

import "fmt"

const systemPrompt = `
You are a expert business development officer. Your job is to identify possible leads for an immigration consultancy firm by analyzing facebook posts.
The firm that you work for primarily focuses in student visa processing.
You should carefully study the posts provided and identify if there is a possiblity of a lead for the firm.
Ignore posts that express gratitude for positive outcomes as they are already closed.
You should focus only on cases that can be potential clients for the firm.
`

const userPromptTemplate = `
The following text contains a post made in a facebook group regarding student visa in Australia.
Your job is to identify if the job post contains an intention for the following:

1. There is a change of course. A student is looking to change their educational instituion.
2. A visa is to be processed or a visa processing agent is required.
3. Skill assessment is required by an applicant.
4. A student needs to enroll in a new university.
5. A student needs to get extension on their visa.

You should reason through the job post and provide the result in JSON format where you provide a "Yes" or "No" for if any of the above intentions exist.
You should also say the number of the intention for which you think this will fall under. There may be multiple categories as well. You can list them in a comma separated format.

` + "```json" + `
Example response:
{
    "Relevant Intention": "Yes",
    "Category": "3, 5"
}
` + "```" + `

Text: "%s"
`

// Messages builds the system and user messages for one post
func Messages(text string) []ChatMessage {
	return []ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userPromptTemplate, text)},
	}
}
