package instrument

import "github.com/agent-analytics/agenttrace-go/pkg/tracing"

// Attribute keys for agent and LLM call sites, following the OpenTelemetry
// GenAI semantic conventions.
const (
	AttrOperationName     = "gen_ai.operation.name"
	AttrAgentName         = "gen_ai.agent.name"
	AttrRequestModel      = "gen_ai.request.model"
	AttrResponseModel     = "gen_ai.response.model"
	AttrUsageInputTokens  = "gen_ai.usage.input_tokens"
	AttrUsageOutputTokens = "gen_ai.usage.output_tokens"
	AttrToolName          = "gen_ai.tool.name"
)

// LLMCall describes a chat/completion call against the given model.
func LLMCall(name, model string, attrs ...tracing.Attribute) CallInfo {
	return CallInfo{
		Name: name,
		Attributes: append([]tracing.Attribute{
			tracing.Attr(AttrOperationName, "chat"),
			tracing.Attr(AttrRequestModel, model),
		}, attrs...),
	}
}

// ToolCall describes an agent tool invocation.
func ToolCall(name, tool string, attrs ...tracing.Attribute) CallInfo {
	return CallInfo{
		Name: name,
		Attributes: append([]tracing.Attribute{
			tracing.Attr(AttrOperationName, "execute_tool"),
			tracing.Attr(AttrToolName, tool),
		}, attrs...),
	}
}

// AgentRun describes a top-level agent execution.
func AgentRun(name, agent string, attrs ...tracing.Attribute) CallInfo {
	return CallInfo{
		Name: name,
		Attributes: append([]tracing.Attribute{
			tracing.Attr(AttrOperationName, "invoke_agent"),
			tracing.Attr(AttrAgentName, agent),
		}, attrs...),
	}
}
