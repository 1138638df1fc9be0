// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"nutrifacil/internal/gateway"
	"nutrifacil/internal/models"
)

type GetSubstitutionParams struct {
	Food           string `json:"food" description:"Food to replace"`
	TargetCalories int    `json:"target_calories" description:"Calories the alternatives should match"`
}

type ChatParams struct {
	History []models.ChatMessage `json:"history,omitempty" description:"Earlier turns, oldest first"`
	Message string               `json:"message" description:"New user message"`
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type toolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var toolDescriptions = map[string]string{
	string(gateway.OpGenerateDietPlan): "Generate a one-day diet plan for a complete user profile",
	string(gateway.OpGetSubstitution):  "Suggest three alternatives for a food at a calorie target",
	string(gateway.OpChat):             "Answer one message as the nutritionist, given the earlier turns",
}

// errInvalidParams marks a request the caller must fix.
var errInvalidParams = errors.New("invalid parameters")

// extractParams decodes the request arguments into target.
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal arguments: %v", errInvalidParams, err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	return nil
}

func (s *Server) registerTools() {
	s.tools = map[string]toolHandler{
		string(gateway.OpGenerateDietPlan): s.handleGenerateDietPlan,
		string(gateway.OpGetSubstitution):  s.handleGetSubstitution,
		string(gateway.OpChat):             s.handleChatWithNutritionist,
	}
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools := make([]toolInfo, 0, len(s.tools))
	for name := range s.tools {
		tools = append(tools, toolInfo{Name: name, Description: toolDescriptions[name]})
	}
	sort.Slice(tools, func(i, j int) bool { return tools[i].Name < tools[j].Name })

	writeJSON(w, http.StatusOK, map[string][]toolInfo{"tools": tools})
}

// handleMCP serves one tool call per request. The tools are stateless and
// share no data with browser sessions.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %v", err))
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown tool: %s", request.Name))
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", request.Name, "kind", gateway.Kind(err), "error", err)
		writeError(w, toolStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func toolStatus(err error) int {
	switch {
	case errors.Is(err, errInvalidParams), errors.Is(err, gateway.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleGenerateDietPlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var profile models.UserProfile
	if err := extractParams(req, &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidParams, err)
	}

	plan, err := s.gateway.GenerateDietPlan(ctx, profile)
	if err != nil {
		return nil, err
	}

	return createJSONResponse(plan)
}

func (s *Server) handleGetSubstitution(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetSubstitutionParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Food == "" {
		return nil, fmt.Errorf("%w: food is required", errInvalidParams)
	}
	if params.TargetCalories <= 0 {
		return nil, fmt.Errorf("%w: target_calories must be positive", errInvalidParams)
	}

	text, err := s.gateway.GetSubstitution(ctx, params.Food, params.TargetCalories)
	if err != nil {
		return nil, err
	}

	return createJSONResponse(map[string]interface{}{
		"food":            params.Food,
		"target_calories": params.TargetCalories,
		"suggestions":     text,
	})
}

func (s *Server) handleChatWithNutritionist(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params ChatParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if params.Message == "" {
		return nil, fmt.Errorf("%w: message is required", errInvalidParams)
	}

	reply, err := s.gateway.ChatWithNutritionist(ctx, params.History, params.Message)
	if err != nil {
		return nil, err
	}

	return createJSONResponse(map[string]string{"reply": reply})
}

func createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
