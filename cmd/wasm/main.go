//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/inamate/vecdraw/internal/engine"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	api := js.Global().Get("Object").New()

	// --- Commands (frontend → engine) ---
	api.Set("loadDocument", js.FuncOf(loadDocument))
	api.Set("updateDocument", js.FuncOf(updateDocument))
	api.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	api.Set("setScene", js.FuncOf(setScene))
	api.Set("setSelection", js.FuncOf(setSelection))
	api.Set("setHandleRadius", js.FuncOf(setHandleRadius))
	api.Set("transformObject", js.FuncOf(transformObject))
	api.Set("distort", js.FuncOf(distort))
	api.Set("resetDistortion", js.FuncOf(resetDistortion))
	api.Set("removeDistortion", js.FuncOf(removeDistortion))
	api.Set("selectCorner", js.FuncOf(selectCorner))
	api.Set("dragCorner", js.FuncOf(dragCorner))
	api.Set("releaseCorner", js.FuncOf(releaseCorner))

	// --- Queries (frontend ← engine) ---
	api.Set("render", js.FuncOf(render))
	api.Set("hitTest", js.FuncOf(hitTest))
	api.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	api.Set("getScene", js.FuncOf(getScene))
	api.Set("getDistortion", js.FuncOf(getDistortion))
	api.Set("getDocument", js.FuncOf(getDocument))
	api.Set("getSelection", js.FuncOf(getSelection))

	js.Global().Set("vecdrawEngine", api)
	js.Global().Set("vecdrawWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func result(err error) interface{} {
	if err != nil {
		return js.ValueOf(map[string]interface{}{"error": err.Error()})
	}
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func missing(what string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": "missing " + what})
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("document JSON")
	}
	return result(eng.UpdateDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}
	eng.LoadSampleDocument(projectID)
	return result(nil)
}

func setScene(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetScene(args[0].String())
	return nil
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || args[0].Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	ids := make([]string, arr.Length())
	for i := range ids {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func setHandleRadius(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetHandleRadius(args[0].Float())
	return nil
}

// transformObject(id, opJSON) applies a translate/scale/rotate/matrix op.
func transformObject(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("object id or op")
	}
	return result(eng.TransformObject(args[0].String(), args[1].String()))
}

func distort(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("object id")
	}
	return result(eng.Distort(args[0].String()))
}

func resetDistortion(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("object id")
	}
	return result(eng.ResetDistortion(args[0].String()))
}

func removeDistortion(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return missing("object id")
	}
	return result(eng.RemoveDistortion(args[0].String()))
}

// selectCorner(id, x, y) returns the picked corner index, or -1.
func selectCorner(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return missing("object id or point")
	}
	i, err := eng.SelectCorner(args[0].String(), args[1].Float(), args[2].Float())
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"corner": i})
}

// dragCorner(x, y) reports moved=false when no corner is picked.
func dragCorner(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return missing("point")
	}
	moved, err := eng.DragCorner(args[0].Float(), args[1].Float())
	if err != nil {
		return result(err)
	}
	return js.ValueOf(map[string]interface{}{"moved": moved})
}

func releaseCorner(this js.Value, args []js.Value) interface{} {
	eng.ReleaseCorner()
	return nil
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getScene(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetScene())
}

func getDistortion(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("{}")
	}
	return js.ValueOf(eng.GetDistortion(args[0].String()))
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}
