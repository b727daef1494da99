package generator

const promptTemplate = `You are an educational content creator specializing in micro-learning.

Given the following text, create a 60-second micro-learning script split into 5-7 slides.

Return your response as pure JSON (no markdown, no code fences, no extra text) in this exact format:
{
    "summary": "A 2-3 line summary of the key content",
    "slides": [
        {"title": "Slide Title", "content": "2-3 lines of educational content"},
        {"title": "Slide Title", "content": "2-3 lines of educational content"}
    ]
}

Rules:
- The summary should capture the essence of the content in 2-3 lines.
- Each slide should have a clear, concise title.
- Each slide's content should be 2-3 lines, easy to read and understand.
- Aim for 5-7 slides total.
- Make the content engaging and educational.
- Return ONLY the JSON object, nothing else.

Text to process:
---
`

// BuildPrompt 把文本嵌入到固定模板中，相同输入总是得到相同的 prompt。
func BuildPrompt(text string) string {
	return promptTemplate + text + "\n---"
}
