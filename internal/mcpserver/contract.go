package mcpserver

const layoutURI = "lcsc2kicad://library-layout"

// LibraryLayout describes where converted artifacts are stored so MCP
// clients can point KiCad at them.
const LibraryLayout = `# Library Layout

A library named ` + "`lcsc`" + ` in directory ` + "`DIR`" + ` is made of:

| Path | Content |
|------|---------|
| ` + "`DIR/lcsc.kicad_sym`" + ` | one symbol library holding every converted symbol |
| ` + "`DIR/lcsc.pretty/<name>.kicad_mod`" + ` | one footprint file per component |
| ` + "`DIR/lcsc.3dshapes/<name>.wrl`" + ` | VRML mesh used for rendering |
| ` + "`DIR/lcsc.3dshapes/<name>.step`" + ` | STEP solid used for mechanical export |

## Names

- A component name is the sanitized part title followed by ` + "`_<LCSC id>`" + `,
  e.g. ` + "`0603WAF1002T5E_C25804`" + `.
- Sanitizing keeps letters, digits, ` + "`_`" + ` and ` + "`-`" + `; everything else becomes ` + "`_`" + `.
- Symbols reference their footprint as ` + "`lcsc:<name>`" + `.

## 3D model paths

Footprints reference the STEP file through a variable:

- ` + "`${KIPRJMOD}/lcsc.3dshapes/<name>.step`" + ` when the library lives inside the project;
- ` + "`${<GLOBAL_ENV>}/lcsc.3dshapes/<name>.step`" + ` otherwise. Define ` + "`GLOBAL_ENV`" + `
  in KiCad's path configuration.

## Registering in KiCad

1. Add ` + "`DIR/lcsc.kicad_sym`" + ` in *Preferences → Manage Symbol Libraries* with nickname ` + "`lcsc`" + `.
2. Add ` + "`DIR/lcsc.pretty`" + ` in *Preferences → Manage Footprint Libraries* with the same nickname.
`
