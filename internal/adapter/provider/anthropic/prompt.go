package anthropic

import "fmt"

func buildOutlinePrompt(courseTitle, imagePoolJSON string) string {
	return fmt.Sprintf(`You are an expert instructional designer creating a curriculum for an online course titled "%s" on the E-Learnify platform.
Generate a realistic, structured, multi-week course outline.

Guidelines:
1. Structure the course into a logical sequence of 4 to 6 weekly modules. Each module title MUST be "Week X: [Topic]".
2. For each weekly module, create 3-5 individual lesson titles.
3. The LAST lesson of each week MUST be an assessment (either a "Quiz" or a "Project") with "isAssessment": true.
4. For each module, select the most contextually relevant image URL from the image pool below. Do not invent new URLs.
5. Every module id and every lesson id must be unique across the whole course.

Image Pool:
%s

Output ONLY a valid JSON object matching this exact schema:
{
  "modules": [
    {
      "id": "<module id>",
      "title": "Week 1: <topic>",
      "imageUrl": "<url from the image pool>",
      "lessons": [
        {"id": "<lesson id>", "title": "<lesson title>", "isAssessment": false}
      ]
    }
  ]
}

Output ONLY the JSON, no markdown, no explanations`, courseTitle, imagePoolJSON)
}

func buildLessonPrompt(courseTitle, lessonTitle string) string {
	return fmt.Sprintf(`You are a world-class instructional designer creating a "ZERO to HERO" lesson plan for the lesson "%s" in the course "%s".
Your output MUST be a single, clean JSON object with no markdown or explanations outside it.

The root object has three keys: "lessonTitle", "dailyPlans" and "summaryHTML".
- "lessonTitle": the lesson title.
- "dailyPlans": an array of 5 objects, one per day, each with:
  - "day": an integer from 1 to 5.
  - "title": the day's topic.
  - "contentHTML": an in-depth HTML explanation with practical examples.
  - "quiz": an array of 2-3 objects {"question": string, "options": [4 unique strings], "answer": one of the options, verbatim}.
- "summaryHTML": an HTML summary of the whole lesson.

HTML rules for "contentHTML" and "summaryHTML":
- Short paragraphs: <p class="text-gray-300 leading-relaxed mb-4">. Sub-topic headings: <h4 class="text-lg font-semibold text-white mt-6 mb-2">.
- Use <strong> and <u> for key terms.
- Multi-line code: <pre class="bg-gray-900 text-sm text-white rounded-md p-4 overflow-x-auto my-4"><code>...</code></pre>. Inline code: <code class="bg-gray-700 text-cyan-300 px-1 py-0.5 rounded text-sm">...</code>.
- Lists: <ul class="list-disc list-inside text-gray-300 space-y-2 pl-4 mb-4"> or <ol class="list-decimal list-inside text-gray-300 space-y-2 pl-4 mb-4">.
- Key concepts go in <div class="p-4 bg-gray-700/60 border border-gray-600 rounded-lg my-4"><h4 class="font-bold text-cyan-300">🧠 Key Concept: [Name]</h4><p class="mt-2 text-gray-300">[Explanation]</p></div>.
- Be encouraging and mentor-like, use emojis (🚀, 💡, ✅, 🧠).`, lessonTitle, courseTitle)
}

func buildAssessmentPrompt(courseTitle, lessonTitle string) string {
	return fmt.Sprintf(`You are an expert educator on the E-Learnify platform. Generate an assessment for a lesson within the "%s" course.
The assessment is titled: "%s".
The output MUST be a single, clean HTML snippet. Do NOT include <html>, <head> or <body> tags, and do not wrap it in markdown.

Guidelines:
- Create a multiple-choice quiz with 5-7 questions that thoroughly test the lesson's concepts.
- Each question has 4 options with one correct answer.
- Wrap the whole quiz in <div class="p-6 bg-gray-800 border border-gray-700 rounded-lg">.
- Inside it use a <form>. Each question sits in <div class="my-6"> with a <p class="font-semibold text-lg mb-2"> for the question text.
- Options are a <ul> of <li> items, each containing a <label> with an <input type="radio">.
- List the correct answers at the very end, outside the form but inside the container: <p class="mt-6 pt-4 border-t border-gray-600 text-sm text-gray-400">Correct Answers: 1-C, 2-A, ...</p>`, courseTitle, lessonTitle)
}
