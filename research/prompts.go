package research

// DefaultSubtopics 是分解失败时的固定降级三元组。
// 分解永远不能阻塞流水线：一次降级但完整的运行优于失败。
var DefaultSubtopics = []string{
	"Technical challenges",
	"Economic factors",
	"Policy considerations",
}

const (
	// searchQuerySuffix 附加在子题后构成检索查询。
	searchQuerySuffix = " research analysis"

	// degradedFindingsPrefix 标记 Worker 降级记录。
	degradedFindingsPrefix = "Research failed: "

	// failedSynthesis 是零记录运行的固定综合文本。
	failedSynthesis = "Research could not be completed due to technical issues."

	// errorSubtopic 是 Lead 顶层恢复时的占位子题。
	errorSubtopic = "Error occurred"

	decomposeSystemPrompt = "You are a research coordinator. Break down complex research questions into 3 specific subtopics for specialized agents."

	decomposeUserPromptFmt = "Break down this research question into 3 subtopics: %s"

	workerSystemPromptFmt = "You are a research agent specializing in %s. Provide detailed analysis based on the search results."

	workerUserPromptFmt = "Analyze this research data: %s"

	// workerFallbackFmt 在模型返回空响应时作为模板化 findings。
	workerFallbackFmt = "Analysis of %s based on available research data."

	synthesisSystemPrompt = "You are a senior researcher. Synthesize multiple research findings into a comprehensive report."

	synthesisUserPromptFmt = "Original question: %s\n\nResearch findings:\n%s\n\nCreate a comprehensive synthesis."

	// synthesisFallbackFmt 在综合调用失败或为空时使用。
	synthesisFallbackFmt = "Synthesis of research on: %s\n\nBased on findings from %d research agents."

	// errorSynthesisFmt 是顶层恢复报告的综合文本。
	errorSynthesisFmt = "Research failed due to error: %s"
)
