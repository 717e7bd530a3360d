package main

import (
	"encoding/json"
)

// Command represents a JSON command for scripts and agents
type Command struct {
	Action string                 `json:"action"`
	Params map[string]interface{} `json:"params"`
}

// Response represents a JSON response from command execution
type Response struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ExecuteCommand executes a JSON command and returns a JSON response
func (rc *RepairCore) ExecuteCommand(cmdJSON string) string {
	var cmd Command
	if err := json.Unmarshal([]byte(cmdJSON), &cmd); err != nil {
		return errorResponse("Invalid JSON: " + err.Error())
	}

	switch cmd.Action {
	case "set_input_text":
		return rc.cmdSetInputText(cmd.Params)
	case "get_input_text":
		return successResponse(map[string]interface{}{"text": rc.GetInputText()})
	case "get_output_text":
		return successResponse(map[string]interface{}{"text": rc.GetOutputText()})
	case "get_report":
		return successResponse(rc.GetReport())
	case "list_rules":
		return successResponse(map[string]interface{}{
			"ruleset": rc.GetRuleSetName(),
			"rules":   rc.ListRules(),
		})
	case "use_ruleset":
		return rc.cmdUseRuleSet(cmd.Params)
	case "check":
		return rc.cmdCheck(cmd.Params)
	default:
		return errorResponse("Unknown action: " + cmd.Action)
	}
}

// ============================================================================
// Command Handlers
// ============================================================================

func (rc *RepairCore) cmdSetInputText(params map[string]interface{}) string {
	text, ok := params["text"].(string)
	if !ok {
		return errorResponse("Missing required parameter: text")
	}

	rc.SetInputText(text)
	return successResponse(map[string]interface{}{
		"text":   rc.GetOutputText(),
		"report": rc.GetReport(),
	})
}

func (rc *RepairCore) cmdUseRuleSet(params map[string]interface{}) string {
	name := getStr(params, "name", "")
	if name == "" {
		return errorResponse("Missing required parameter: name")
	}

	if err := rc.UseRuleSet(name); err != nil {
		return errorResponse(err.Error())
	}
	return successResponse(map[string]interface{}{"ruleset": rc.GetRuleSetName()})
}

func (rc *RepairCore) cmdCheck(params map[string]interface{}) string {
	report, err := rc.Check()
	if err != nil {
		return errorResponse(err.Error())
	}
	return successResponse(report)
}

// ============================================================================
// Helper Functions
// ============================================================================

// getStr safely extracts a string parameter, with a default value
func getStr(params map[string]interface{}, key, defaultValue string) string {
	if val, ok := params[key]; ok {
		if strVal, ok := val.(string); ok {
			return strVal
		}
	}
	return defaultValue
}

func successResponse(result interface{}) string {
	data, _ := json.Marshal(Response{Success: true, Result: result})
	return string(data)
}

func errorResponse(errorMsg string) string {
	data, _ := json.Marshal(Response{Success: false, Error: errorMsg})
	return string(data)
}
