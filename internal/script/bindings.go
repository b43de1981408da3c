package script

import (
	"context"
	"fmt"
	"strings"

	"github.com/bethropolis/pixl/internal/core"
	"github.com/bethropolis/pixl/internal/core/fill"
	"github.com/bethropolis/pixl/internal/core/history"
	"github.com/bethropolis/pixl/internal/core/selection"
	"github.com/bethropolis/pixl/internal/imgproc"
	"github.com/bethropolis/pixl/internal/layer"
	"github.com/bethropolis/pixl/internal/logger"
	"github.com/bethropolis/pixl/internal/palette"
	"github.com/bethropolis/pixl/internal/types"
	"github.com/d5/tengo/v2"
)

type binding func(args ...tengo.Object) (tengo.Object, error)

// bindings builds the `pixl` object. ctx bounds effects started by the
// script.
func (r *Runner) bindings(ctx context.Context) *tengo.ImmutableMap {
	d, pal := r.doc, r.palettes
	fns := map[string]binding{
		"size": func(args ...tengo.Object) (tengo.Object, error) {
			s := d.Size()
			return intArray(s.Width, s.Height), nil
		},
		"set_canvas_size": func(args ...tengo.Object) (tengo.Object, error) {
			w, h, err := twoInts(args, 0, "width", "height")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.SetCanvasSize(types.Size{Width: w, Height: h})
		},
		"set_color": func(args ...tengo.Object) (tengo.Object, error) {
			slot, err := argString(args, 0, "slot")
			if err != nil {
				return nil, err
			}
			c, err := argColor(args, 1, d, pal)
			if err != nil {
				return nil, err
			}
			s := history.PalettePrimary
			if slot == "secondary" {
				s = history.PaletteSecondary
			}
			return tengo.UndefinedValue, d.SetPaletteColor(s, c)
		},
		"colors": func(args ...tengo.Object) (tengo.Object, error) {
			p, s := d.Colors()
			return &tengo.Array{Value: []tengo.Object{&tengo.String{Value: p.Hex()}, &tengo.String{Value: s.Hex()}}}, nil
		},
		"palettes": func(args ...tengo.Object) (tengo.Object, error) {
			return stringArray(pal.ListPalettes()), nil
		},
		"use_palette": func(args ...tengo.Object) (tengo.Object, error) {
			name, err := argString(args, 0, "name")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, pal.SetPalette(name)
		},
		"swatches": func(args ...tengo.Object) (tengo.Object, error) {
			p := pal.Current()
			hexes := make([]string, len(p.Colors))
			for i, c := range p.Colors {
				hexes[i] = c.Hex()
			}
			return stringArray(hexes), nil
		},
		"nearest_swatch": func(args ...tengo.Object) (tengo.Object, error) {
			c, err := argColor(args, 0, d, pal)
			if err != nil {
				return nil, err
			}
			return &tengo.Int{Value: int64(pal.Current().Nearest(c))}, nil
		},
		"get_pixel": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := twoInts(args, 0, "x", "y")
			if err != nil {
				return nil, err
			}
			a, err := d.ActiveLayer()
			if err != nil {
				return nil, err
			}
			c, ok := a.GetPixel(types.Position{X: x, Y: y})
			if !ok {
				return tengo.UndefinedValue, nil
			}
			return &tengo.String{Value: c.Hex()}, nil
		},

		// Strokes
		"begin_stroke": func(args ...tengo.Object) (tengo.Object, error) {
			limit, err := selection.ParseLimitMode(optString(args, 0, "none"))
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.BeginStroke(limit, optString(args, 1, ""))
		},
		"pixel": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := twoInts(args, 0, "x", "y")
			if err != nil {
				return nil, err
			}
			c, err := argColor(args, 2, d, pal)
			if err != nil {
				return nil, err
			}
			ok, err := d.DrawPixel(types.Position{X: x, Y: y}, c)
			return boolObject(ok), err
		},
		"line": func(args ...tengo.Object) (tengo.Object, error) {
			x0, y0, err := twoInts(args, 0, "x0", "y0")
			if err != nil {
				return nil, err
			}
			x1, y1, err := twoInts(args, 2, "x1", "y1")
			if err != nil {
				return nil, err
			}
			c, err := argColor(args, 4, d, pal)
			if err != nil {
				return nil, err
			}
			n, err := d.DrawLine(types.Position{X: x0, Y: y0}, types.Position{X: x1, Y: y1}, c)
			return &tengo.Int{Value: int64(n)}, err
		},
		"end_stroke": func(args ...tengo.Object) (tengo.Object, error) {
			a, err := d.EndStroke()
			return boolObject(a != nil), err
		},
		"cancel_stroke": func(args ...tengo.Object) (tengo.Object, error) {
			return tengo.UndefinedValue, d.CancelStroke()
		},

		"fill": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := twoInts(args, 0, "x", "y")
			if err != nil {
				return nil, err
			}
			c, err := argColor(args, 2, d, pal)
			if err != nil {
				return nil, err
			}
			tol, mode := d.FillDefaults()
			if len(args) > 3 {
				t, err := argInt(args, 3, "tolerance")
				if err != nil {
					return nil, err
				}
				tol = uint8(max(0, min(255, t)))
			}
			if len(args) > 4 {
				if mode, err = fill.ParseMode(optString(args, 4, "")); err != nil {
					return nil, err
				}
			}
			a, err := d.Fill(types.Position{X: x, Y: y}, c, tol, mode)
			return boolObject(a != nil), err
		},

		// Selection
		"select_rect": func(args ...tengo.Object) (tengo.Object, error) {
			l, t, err := twoInts(args, 0, "left", "top")
			if err != nil {
				return nil, err
			}
			rt, b, err := twoInts(args, 2, "right", "bottom")
			if err != nil {
				return nil, err
			}
			mode, err := selection.ParseEditMode(optString(args, 4, "replace"))
			if err != nil {
				return nil, err
			}
			return boolObject(d.SelectRect(types.Rect{Left: l, Top: t, Right: rt, Bottom: b}, mode)), nil
		},
		"auto_select": func(args ...tengo.Object) (tengo.Object, error) {
			x, y, err := twoInts(args, 0, "x", "y")
			if err != nil {
				return nil, err
			}
			tol := 0
			if len(args) > 2 {
				if tol, err = argInt(args, 2, "tolerance"); err != nil {
					return nil, err
				}
			}
			mode, err := selection.ParseEditMode(optString(args, 3, "replace"))
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.AutoSelect(types.Position{X: x, Y: y}, uint8(max(0, min(255, tol))), mode)
		},
		"select_all": func(args ...tengo.Object) (tengo.Object, error) {
			d.SelectAll()
			return tengo.UndefinedValue, nil
		},
		"clear_selection": func(args ...tengo.Object) (tengo.Object, error) {
			d.ClearSelection()
			return tengo.UndefinedValue, nil
		},
		"delete_selection": func(args ...tengo.Object) (tengo.Object, error) {
			a, err := d.DeleteInSelection()
			return boolObject(a != nil), err
		},
		"copy": func(args ...tengo.Object) (tengo.Object, error) {
			ok, err := d.Copy()
			return boolObject(ok), err
		},
		"cut": func(args ...tengo.Object) (tengo.Object, error) {
			a, err := d.Cut()
			return boolObject(a != nil), err
		},
		"paste": func(args ...tengo.Object) (tengo.Object, error) {
			return tengo.UndefinedValue, d.Paste()
		},

		// Moves
		"start_move": func(args ...tengo.Object) (tengo.Object, error) {
			return tengo.UndefinedValue, d.StartMove()
		},
		"move_to": func(args ...tengo.Object) (tengo.Object, error) {
			dx, dy, err := twoInts(args, 0, "dx", "dy")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.MoveTo(types.Position{X: dx, Y: dy})
		},
		"commit_move": func(args ...tengo.Object) (tengo.Object, error) {
			a, err := d.CommitMove()
			return boolObject(a != nil), err
		},
		"cancel_move": func(args ...tengo.Object) (tengo.Object, error) {
			return tengo.UndefinedValue, d.CancelMove()
		},

		"effect": func(args ...tengo.Object) (tengo.Object, error) {
			name, err := argString(args, 0, "name")
			if err != nil {
				return nil, err
			}
			kind, err := imgproc.ParseKind(name)
			if err != nil {
				return nil, err
			}
			p := imgproc.DefaultParams()
			if len(args) > 1 {
				if err := effectParams(args[1], &p); err != nil {
					return nil, err
				}
			}
			_, err = d.ApplyEffect(ctx, kind, p)
			return tengo.UndefinedValue, err
		},

		// Layers
		"layers": func(args ...tengo.Object) (tengo.Object, error) {
			return stringArray(d.Layers().Order()), nil
		},
		"active_layer": func(args ...tengo.Object) (tengo.Object, error) {
			return &tengo.String{Value: d.Layers().ActiveID()}, nil
		},
		"set_active_layer": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.SetActiveLayer(id)
		},
		"add_layer": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := d.AddLayer(optString(args, 0, ""))
			return &tengo.String{Value: id}, err
		},
		"remove_layer": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.RemoveLayer(id)
		},
		"reorder_layers": func(args ...tengo.Object) (tengo.Object, error) {
			if len(args) != 1 {
				return nil, tengo.ErrWrongNumArguments
			}
			arr, ok := args[0].(*tengo.Array)
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "ids", Expected: "array", Found: args[0].TypeName()}
			}
			ids := make([]string, 0, len(arr.Value))
			for _, o := range arr.Value {
				s, _ := tengo.ToString(o)
				ids = append(ids, s)
			}
			return tengo.UndefinedValue, d.ReorderLayers(ids)
		},
		"set_layer_props": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			a, err := d.Layers().Get(id)
			if err != nil {
				return nil, err
			}
			props := a.Props
			if len(args) < 2 {
				return nil, tengo.ErrWrongNumArguments
			}
			if err := layerProps(args[1], &props); err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.SetLayerProps(id, props)
		},

		// Image pool
		"load_image": func(args ...tengo.Object) (tengo.Object, error) {
			path, err := argString(args, 0, "path")
			if err != nil {
				return nil, err
			}
			e, err := d.LoadImage(path)
			if err != nil {
				return nil, err
			}
			return &tengo.String{Value: e.ID}, nil
		},
		"place_image": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			x, y, err := twoInts(args, 1, "x", "y")
			if err != nil {
				return nil, err
			}
			e, err := d.ImagePool().Get(id)
			if err != nil {
				return nil, err
			}
			props := e.Props
			props.X, props.Y = x, y
			if len(args) > 3 {
				s, ok := tengo.ToFloat64(args[3])
				if !ok {
					return nil, tengo.ErrInvalidArgumentType{Name: "scale", Expected: "float", Found: args[3].TypeName()}
				}
				props.Scale = s
			}
			return tengo.UndefinedValue, d.SetImageProps(id, props)
		},
		"transfer_image": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			a, err := d.TransferImage(id)
			return boolObject(a != nil), err
		},
		"remove_image": func(args ...tengo.Object) (tengo.Object, error) {
			id, err := argString(args, 0, "id")
			if err != nil {
				return nil, err
			}
			return tengo.UndefinedValue, d.RemoveImage(id)
		},

		"undo": func(args ...tengo.Object) (tengo.Object, error) {
			ok, err := d.Undo()
			return boolObject(ok), err
		},
		"redo": func(args ...tengo.Object) (tengo.Object, error) {
			ok, err := d.Redo()
			return boolObject(ok), err
		},
		"save": func(args ...tengo.Object) (tengo.Object, error) {
			path, err := argString(args, 0, "path")
			if err != nil {
				return nil, err
			}
			flatten := true
			if len(args) > 1 {
				flatten = !args[1].IsFalsy()
			}
			return tengo.UndefinedValue, d.ExportFile(path, flatten)
		},
		"log": func(args ...tengo.Object) (tengo.Object, error) {
			parts := make([]string, len(args))
			for i, a := range args {
				parts[i], _ = tengo.ToString(a)
			}
			logger.InfoTagf("script", "%s", strings.Join(parts, " "))
			return tengo.UndefinedValue, nil
		},
	}

	values := make(map[string]tengo.Object, len(fns))
	for name, fn := range fns {
		values[name] = &tengo.UserFunction{Name: name, Value: tengo.CallableFunc(fn)}
	}
	return &tengo.ImmutableMap{Value: values}
}

func argInt(args []tengo.Object, i int, name string) (int, error) {
	if i >= len(args) {
		return 0, tengo.ErrWrongNumArguments
	}
	v, ok := tengo.ToInt(args[i])
	if !ok {
		return 0, tengo.ErrInvalidArgumentType{Name: name, Expected: "int", Found: args[i].TypeName()}
	}
	return v, nil
}

func twoInts(args []tengo.Object, i int, a, b string) (int, int, error) {
	x, err := argInt(args, i, a)
	if err != nil {
		return 0, 0, err
	}
	y, err := argInt(args, i+1, b)
	return x, y, err
}

func argString(args []tengo.Object, i int, name string) (string, error) {
	if i >= len(args) {
		return "", tengo.ErrWrongNumArguments
	}
	s, ok := args[i].(*tengo.String)
	if !ok {
		return "", tengo.ErrInvalidArgumentType{Name: name, Expected: "string", Found: args[i].TypeName()}
	}
	return s.Value, nil
}

func optString(args []tengo.Object, i int, def string) string {
	if i >= len(args) {
		return def
	}
	s, ok := tengo.ToString(args[i])
	if !ok {
		return def
	}
	return s
}

// argColor reads a color at i: a hex string, or an int indexing the active
// palette. Missing means the primary color.
func argColor(args []tengo.Object, i int, d *core.Document, pal *palette.Manager) (types.RGBA, error) {
	if i >= len(args) {
		p, _ := d.Colors()
		return p, nil
	}
	if n, ok := args[i].(*tengo.Int); ok {
		return pal.Current().Swatch(int(n.Value))
	}
	s, err := argString(args, i, "color")
	if err != nil {
		return types.RGBA{}, err
	}
	return types.ParseHex(s)
}

func boolObject(b bool) tengo.Object {
	if b {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}

func intArray(vs ...int) *tengo.Array {
	out := make([]tengo.Object, len(vs))
	for i, v := range vs {
		out[i] = &tengo.Int{Value: int64(v)}
	}
	return &tengo.Array{Value: out}
}

func stringArray(vs []string) *tengo.Array {
	out := make([]tengo.Object, len(vs))
	for i, v := range vs {
		out[i] = &tengo.String{Value: v}
	}
	return &tengo.Array{Value: out}
}

func mapValues(o tengo.Object) (map[string]tengo.Object, error) {
	switch m := o.(type) {
	case *tengo.Map:
		return m.Value, nil
	case *tengo.ImmutableMap:
		return m.Value, nil
	}
	return nil, tengo.ErrInvalidArgumentType{Name: "params", Expected: "map", Found: o.TypeName()}
}

func effectParams(o tengo.Object, p *imgproc.Params) error {
	m, err := mapValues(o)
	if err != nil {
		return err
	}
	for k, v := range m {
		switch k {
		case "levels":
			p.Levels, _ = tengo.ToInt(v)
		case "brightness":
			p.Brightness, _ = tengo.ToFloat64(v)
		case "contrast":
			p.Contrast, _ = tengo.ToFloat64(v)
		case "strength":
			p.Strength, _ = tengo.ToFloat64(v)
		case "blur_alpha":
			p.BlurAlpha = !v.IsFalsy()
		case "max_size":
			p.MaxSize, _ = tengo.ToInt(v)
		case "alpha_threshold":
			t, _ := tengo.ToInt(v)
			p.AlphaThreshold = uint8(max(0, min(255, t)))
		default:
			return fmt.Errorf("unknown effect parameter %q", k)
		}
	}
	return nil
}

func layerProps(o tengo.Object, p *layer.Props) error {
	m, err := mapValues(o)
	if err != nil {
		return err
	}
	for k, v := range m {
		switch k {
		case "name":
			p.Name, _ = tengo.ToString(v)
		case "visible":
			p.Visible = !v.IsFalsy()
		case "opacity":
			p.Opacity, _ = tengo.ToFloat64(v)
		case "blend_mode":
			s, _ := tengo.ToString(v)
			p.BlendMode = layer.BlendMode(s)
		default:
			return fmt.Errorf("unknown layer property %q", k)
		}
	}
	return nil
}
