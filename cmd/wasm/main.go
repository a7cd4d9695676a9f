//go:build js && wasm

package main

import (
	"encoding/json"
	"errors"
	"strings"
	"syscall/js"

	"github.com/sketchd/sketchd/internal/document"
	"github.com/sketchd/sketchd/internal/history"
	"github.com/sketchd/sketchd/internal/shape"
)

var doc *document.Document

func main() {
	doc = document.New()

	// Create the editor API object
	editor := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	editor.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	editor.Set("addShape", js.FuncOf(addShape))
	editor.Set("removeLast", js.FuncOf(removeLast))
	editor.Set("undo", js.FuncOf(undo))
	editor.Set("redo", js.FuncOf(redo))

	// --- Queries (frontend ← backend) ---
	editor.Set("printTree", js.FuncOf(printTree))
	editor.Set("findAt", js.FuncOf(findAt))
	editor.Set("canUndo", js.FuncOf(canUndo))
	editor.Set("canRedo", js.FuncOf(canRedo))

	// Register on global scope
	js.Global().Set("sketchdEditor", editor)

	// Signal that WASM is ready
	js.Global().Set("sketchdWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

// --- Command Handlers ---

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	doc = document.NewSampleDocument()
	return js.ValueOf(true)
}

func addShape(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return errorResult("missing shape spec")
	}

	var spec document.ShapeSpec
	if err := json.Unmarshal([]byte(args[0].String()), &spec); err != nil {
		return errorResult("invalid shape spec: " + err.Error())
	}

	built, err := document.BuildShape(spec)
	if err != nil {
		return errorResult(err.Error())
	}

	doc.AddObject(built)
	return jsonResult(map[string]string{"id": built.ID(), "line": shape.DrawLine(built)})
}

func removeLast(this js.Value, args []js.Value) interface{} {
	removed, err := doc.RemoveLast()
	if err != nil {
		return errorResult(err.Error())
	}
	return jsonResult(map[string]string{"id": removed.ID()})
}

func undo(this js.Value, args []js.Value) interface{} {
	if err := doc.Undo(); errors.Is(err, history.ErrNothingToUndo) {
		return jsonResult(map[string]string{"status": "noop", "reason": "nothing to undo"})
	}
	return jsonResult(map[string]string{"status": "ok"})
}

func redo(this js.Value, args []js.Value) interface{} {
	if err := doc.Redo(); errors.Is(err, history.ErrNothingToRedo) {
		return jsonResult(map[string]string{"status": "noop", "reason": "nothing to redo"})
	}
	return jsonResult(map[string]string{"status": "ok"})
}

// --- Query Handlers ---

func printTree(this js.Value, args []js.Value) interface{} {
	var b strings.Builder
	doc.Print(&b)
	return js.ValueOf(b.String())
}

func findAt(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return errorResult("findAt requires x and y")
	}

	found := doc.FindObjectAt(args[0].Int(), args[1].Int())
	if found == nil {
		return jsonResult(map[string]interface{}{"found": false})
	}
	return jsonResult(map[string]interface{}{
		"found": true,
		"id":    found.ID(),
		"line":  shape.DrawLine(found),
	})
}

func canUndo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(doc.CanUndo())
}

func canRedo(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(doc.CanRedo())
}

// --- Helpers ---

func jsonResult(v interface{}) js.Value {
	data, err := json.Marshal(v)
	if err != nil {
		return js.ValueOf(`{"error":"marshal failed"}`)
	}
	return js.ValueOf(string(data))
}

func errorResult(msg string) js.Value {
	return jsonResult(map[string]string{"error": msg})
}
