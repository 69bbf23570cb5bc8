package vite

import (
	"fmt"
	"html/template"
	"strings"
)

// newTemplate builds the root template with the Vite helpers installed:
// the viteResource function and the viteClient / viteReactRefresh
// sub-templates. The sub-templates are blank in production builds.
func newTemplate(cfg *Config) *template.Template {
	t := template.New(cfg.TemplateName)

	t.Funcs(template.FuncMap{
		"viteResource": func(name string) (template.HTML, error) {
			return viteResource(cfg, name)
		},
	})

	template.Must(t.New("viteClient").Parse(viteClientHTML(cfg)))
	template.Must(t.New("viteReactRefresh").Parse(viteReactRefreshHTML(cfg)))

	return t
}

func viteResource(cfg *Config, name string) (template.HTML, error) {
	if devMode {
		//nolint:gosec
		return template.HTML(fmt.Sprintf(
			`<script type="module" src="%s/%s"></script>`, cfg.ViteAddress, name)), nil
	}

	if cfg.Manifest == nil {
		return "", fmt.Errorf("inertia: no manifest configured for resource %s", name)
	}

	css, js, err := cfg.Manifest.HTML(name)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, tag := range css {
		b.WriteString(string(tag))
	}

	for _, tag := range js {
		b.WriteString(string(tag))
	}

	//nolint:gosec
	return template.HTML(b.String()), nil
}

func viteClientHTML(cfg *Config) string {
	if !devMode {
		return ""
	}

	return fmt.Sprintf(`<script type="module" src="%s/@vite/client"></script>`, cfg.ViteAddress)
}

func viteReactRefreshHTML(cfg *Config) string {
	if !devMode {
		return ""
	}

	return fmt.Sprintf(`<script type="module">
import RefreshRuntime from '%s/@react-refresh'
RefreshRuntime.injectIntoGlobalHook(window)
window.$RefreshReg$ = () => {}
window.$RefreshSig$ = () => (type) => type
window.__vite_plugin_react_preamble_installed__ = true
</script>`, cfg.ViteAddress)
}
