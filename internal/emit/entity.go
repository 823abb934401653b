package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dave/jennifer/jen"

	"scaffoldgen/internal/introspect"
	"scaffoldgen/internal/scaffold"
)

const validatorPkg = "github.com/go-playground/validator/v10"

// maxLengthRule is the longest column length still checked by a max rule.
const maxLengthRule = 200

// Entity renders the row struct of the scaffold's table.
func Entity(cfg *scaffold.Config) (*jen.File, error) {
	cn := cfg.ClassNames()
	meta := cfg.Meta

	var fields []jen.Code
	for _, name := range meta.ColumnsWithout(entityExcluded...) {
		col, _ := meta.Column(name)
		typ, err := meta.ColumnEntityType(name)
		if err != nil {
			return nil, err
		}
		code, ok := goType(typ)
		if ok && col.AllowNull && !strings.HasPrefix(typ, "[]") && !strings.HasPrefix(typ, "map") {
			code = jen.Op("*").Add(code)
		}
		field := jen.Id(fieldName(name)).Add(code).Tag(map[string]string{"json": name, "db": name})
		if !ok {
			field.Comment(typ)
		}
		fields = append(fields, field)
	}

	f := jen.NewFile("entities")
	f.HeaderComment("Generated by scaffoldgen for table " + cfg.Table + ".")
	f.Commentf("%s is a row of %s.", cn.Class, cfg.Table)
	f.Type().Id(cn.Class).Struct(fields...)
	f.Line()
	f.Comment("TableName is the table the entity is stored in.")
	f.Func().Params(jen.Id(cn.Class)).Id("TableName").Params().String().Block(
		jen.Return(jen.Lit(cfg.Table)),
	)
	if meta.ActiveColumnPresent() {
		f.Line()
		f.Commentf("ActiveOnly%s is the condition hiding soft deleted rows.", cn.Class)
		f.Const().Id("ActiveOnly" + cn.Class).Op("=").Lit(cfg.Table + ".active = true")
	}
	return f, nil
}

// Validation renders the input schema of the scaffold's table with validator
// rules derived from the column types.
func Validation(cfg *scaffold.Config) (*jen.File, error) {
	cn := cfg.ClassNames()
	meta := cfg.Meta
	pk := meta.PrimaryKey()

	var fields []jen.Code
	for _, name := range meta.ColumnsWithout(entityExcluded...) {
		col, _ := meta.Column(name)
		typ, err := meta.ColumnValidationType(name)
		if err != nil {
			return nil, err
		}
		expect, err := meta.ColumnValidationExpect(name)
		if err != nil {
			return nil, err
		}
		extra, err := meta.ColumnValidationArrayExtra(name)
		if err != nil {
			return nil, err
		}

		code, ok := goType(typ)
		rules := []string{"required"}
		if col.AllowNull || name == pk {
			rules[0] = "omitempty"
		}
		if expect != "" && ok {
			rules = append(rules, expect)
		}
		if col.Type == introspect.TypeString && col.MaxLength != nil && *col.MaxLength < maxLengthRule {
			rules = append(rules, "max="+strconv.Itoa(*col.MaxLength))
		}
		if extra != "" {
			rules = append(rules, extra)
		}

		field := jen.Id(fieldName(name)).Add(code).Tag(map[string]string{
			"json":     name,
			"validate": strings.Join(rules, ","),
		})
		if !ok {
			field.Comment(typ)
		}
		fields = append(fields, field)
	}

	f := jen.NewFile("validations")
	f.HeaderComment("Generated by scaffoldgen for table " + cfg.Table + ".")
	f.Var().Id("validate").Op("=").Qual(validatorPkg, "New").Call(
		jen.Qual(validatorPkg, "WithRequiredStructEnabled").Call(),
	)
	f.Line()
	f.Commentf("%s is the input accepted when a %s is created or updated.", cn.Schema, strings.ToLower(cn.TextName))
	f.Type().Id(cn.Schema).Struct(fields...)
	f.Line()
	f.Comment("Validate checks s against the rules in its tags.")
	f.Func().Params(jen.Id("s").Op("*").Id(cn.Schema)).Id("Validate").Params().Error().Block(
		jen.Return(jen.Id("validate").Dot("Struct").Call(jen.Id("s"))),
	)
	return f, nil
}

// Applet renders the package stub of a newly created applet.
func Applet(cfg *scaffold.Config) *jen.File {
	cn := cfg.ClassNames()
	f := jen.NewFile(packageName(cfg.Applet))
	f.PackageComment(fmt.Sprintf("Package %s holds the %s applet of %s.", packageName(cfg.Applet), cn.Applet, cfg.AppName))
	f.Comment("Module is the name the applet is registered under.")
	f.Const().Id("Module").Op("=").Lit(cn.Module)
	return f
}
